package handler

import (
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type NotificationTemplateHandler struct {
	templateSvc *service.NotificationTemplateService
}

func NewNotificationTemplateHandler(templateSvc *service.NotificationTemplateService) *NotificationTemplateHandler {
	return &NotificationTemplateHandler{
		templateSvc: templateSvc,
	}
}

// ListTemplates 获取所有通知模板
// GET /api/admin/templates
func (h *NotificationTemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateSvc.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"templates": templates})
}

// UpdateTemplate 更新通知模板
// POST /api/admin/templates/:type
func (h *NotificationTemplateHandler) UpdateTemplate(c *gin.Context) {
	var req service.TemplateUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	template, err := h.templateSvc.UpdateTemplate(c.Request.Context(), c.Param("type"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"template": template})
}

// InitDefaultTemplates 初始化默认模板
// POST /api/admin/templates/init
func (h *NotificationTemplateHandler) InitDefaultTemplates(c *gin.Context) {
	if err := h.templateSvc.InitDefaultTemplates(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Default templates initialized successfully", nil)
}
