package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lingua/model"

	"gorm.io/gorm"
)

const TemplateNewContact = "new_contact"

type NotificationTemplateService struct {
	db *gorm.DB
}

func NewNotificationTemplateService(db *gorm.DB) *NotificationTemplateService {
	return &NotificationTemplateService{db: db}
}

// defaultTemplates 内置模板，数据库中没有对应记录时使用
var defaultTemplates = []model.NotificationTemplate{
	{
		Type:            TemplateNewContact,
		Title:           "💬 New Lingua message!",
		ContentTemplate: "{{sender_name}} wants to practice languages with you! Check your message requests in World Chat.",
		IsActive:        true,
		Description:     stringPtr("新联系人通知"),
	},
}

// GetTemplate 获取通知模板（数据库优先，其次内置模板）
func (s *NotificationTemplateService) GetTemplate(ctx context.Context, notifType string) (*model.NotificationTemplate, error) {
	var template model.NotificationTemplate
	err := s.db.WithContext(ctx).Where("type = ?", notifType).First(&template).Error
	if err == nil {
		if !template.IsActive {
			return nil, fmt.Errorf("%w: notification template %s is not active", ErrNotConfigured, notifType)
		}
		return &template, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: failed to get template: %w", ErrStoreFailure, err)
	}

	for i := range defaultTemplates {
		if defaultTemplates[i].Type == notifType {
			t := defaultTemplates[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: template %s", ErrNotFound, notifType)
}

// ListTemplates 获取数据库中的全部模板
func (s *NotificationTemplateService) ListTemplates(ctx context.Context) ([]model.NotificationTemplate, error) {
	templates := make([]model.NotificationTemplate, 0)
	if err := s.db.WithContext(ctx).Order("type ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to list templates: %w", ErrStoreFailure, err)
	}
	return templates, nil
}

// TemplateUpdate 模板可修改字段，nil 表示不修改
type TemplateUpdate struct {
	Title           *string `json:"title"`
	ContentTemplate *string `json:"content_template"`
	IsActive        *bool   `json:"is_active"`
}

// UpdateTemplate 按类型更新模板
func (s *NotificationTemplateService) UpdateTemplate(ctx context.Context, notifType string, in TemplateUpdate) (*model.NotificationTemplate, error) {
	updates := make(map[string]interface{})
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates["title"] = *in.Title
	}
	if in.ContentTemplate != nil {
		if strings.TrimSpace(*in.ContentTemplate) == "" {
			return nil, fmt.Errorf("%w: content_template cannot be empty", ErrValidation)
		}
		updates["content_template"] = *in.ContentTemplate
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	result := s.db.WithContext(ctx).Model(&model.NotificationTemplate{}).
		Where("type = ?", notifType).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: failed to update template: %w", ErrStoreFailure, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, notifType)
	}

	var template model.NotificationTemplate
	if err := s.db.WithContext(ctx).Where("type = ?", notifType).First(&template).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to reload template: %w", ErrStoreFailure, err)
	}
	return &template, nil
}

// RenderTemplate 渲染模板，替换变量
func (s *NotificationTemplateService) RenderTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// InitDefaultTemplates 初始化默认通知模板
func (s *NotificationTemplateService) InitDefaultTemplates(ctx context.Context) error {
	for _, template := range defaultTemplates {
		// 检查是否已存在
		var existing model.NotificationTemplate
		err := s.db.WithContext(ctx).Where("type = ?", template.Type).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不存在，创建
			t := template
			if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
				return fmt.Errorf("%w: failed to create default template %s: %w", ErrStoreFailure, template.Type, err)
			}
		} else if err != nil {
			return fmt.Errorf("%w: failed to check template %s: %w", ErrStoreFailure, template.Type, err)
		}
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
