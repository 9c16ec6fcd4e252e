package handler

import (
	"errors"
	"net/http"

	"lingua/middleware"
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

// respondError 把 service 层错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	var dispatchErr *service.DispatchError
	switch {
	case errors.Is(err, service.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotConfigured):
		utils.ServiceUnavailable(c, err.Error())
	case errors.As(err, &dispatchErr):
		status := dispatchErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		utils.ErrorResponse(c, status, "failed to send notification")
	default:
		// 存储错误不把内部细节返回给客户端
		utils.Logger().WithError(err).WithField("path", c.FullPath()).Error("request failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

// currentWallet 取当前钱包，未登录时直接写 401
func currentWallet(c *gin.Context) (string, bool) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		utils.Unauthorized(c, "unauthorized")
	}
	return wallet, ok
}
