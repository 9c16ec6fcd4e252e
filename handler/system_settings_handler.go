package handler

import (
	"lingua/middleware"
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type SystemSettingsHandler struct {
	sysSvc *service.SystemSettingsService
}

func NewSystemSettingsHandler(sysSvc *service.SystemSettingsService) *SystemSettingsHandler {
	return &SystemSettingsHandler{
		sysSvc: sysSvc,
	}
}

// GetSystemSettings 获取所有系统配置
// GET /api/admin/settings
func (h *SystemSettingsHandler) GetSystemSettings(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"settings": h.sysSvc.GetAllSettings(),
	})
}

// UpdateSystemSetting 更新系统配置
// POST /api/admin/settings/:key
func (h *SystemSettingsHandler) UpdateSystemSetting(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Value string `json:"value" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	// 验证配置值（只允许 "true" 或 "false"）
	if req.Value != "true" && req.Value != "false" {
		utils.BadRequest(c, "value must be 'true' or 'false'")
		return
	}

	if err := h.sysSvc.UpdateSetting(c.Request.Context(), key, req.Value); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "setting updated successfully",
		"key":     key,
		"value":   req.Value,
	})
}

// ReloadSystemSettings 重新加载系统配置（从数据库）
// POST /api/admin/settings/reload
func (h *SystemSettingsHandler) ReloadSystemSettings(c *gin.Context) {
	if err := h.sysSvc.LoadSettings(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "settings reloaded successfully",
	})
}

// AdminAuthMiddleware 超管鉴权中间件，需放在 AuthMiddleware 之后
func AdminAuthMiddleware(isAdmin func(wallet string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, exists := middleware.GetWallet(c)
		if !exists {
			utils.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}

		if isAdmin == nil || !isAdmin(wallet) {
			utils.Forbidden(c, "admin only")
			c.Abort()
			return
		}

		c.Next()
	}
}
