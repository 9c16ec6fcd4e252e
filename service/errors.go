package service

import "errors"

var (
	// ErrValidation 参数缺失或非法，在访问存储之前拒绝
	ErrValidation = errors.New("validation error")
	// ErrNotFound 必须存在的记录不存在
	ErrNotFound = errors.New("not found")
	// ErrForbidden 请求身份与操作对象不匹配
	ErrForbidden = errors.New("forbidden")
	// ErrStoreFailure 存储调用失败
	ErrStoreFailure = errors.New("store failure")
	// ErrNotConfigured 外部依赖未配置
	ErrNotConfigured = errors.New("not configured")
)
