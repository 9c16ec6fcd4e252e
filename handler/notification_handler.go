package handler

import (
	"errors"

	"lingua/model"
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
	userSvc  *service.UserService
}

func NewNotificationHandler(notifSvc *service.NotificationService, userSvc *service.UserService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, userSvc: userSvc}
}

// SendNotification 手动通知某个钱包（发起聊天后由前端调用）
// POST /api/v1/notifications/send
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	var req struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	var sender model.ProfileView
	user, err := h.userSvc.GetUser(c.Request.Context(), wallet)
	switch {
	case err == nil:
		sender = user.Profile()
	case !errors.Is(err, service.ErrNotFound):
		utils.Logger().WithError(err).WithField("wallet", wallet).Warn("failed to load sender profile")
	}

	if err := h.notifSvc.SendContactNotification(c.Request.Context(), sender, req.WalletAddress); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"success": true})
}
