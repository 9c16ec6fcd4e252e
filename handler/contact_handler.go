package handler

import (
	"context"
	"errors"

	"lingua/model"
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactSvc *service.ContactService
	userSvc    *service.UserService
	notifSvc   *service.NotificationService
}

func NewContactHandler(contactSvc *service.ContactService, userSvc *service.UserService, notifSvc *service.NotificationService) *ContactHandler {
	return &ContactHandler{
		contactSvc: contactSvc,
		userSvc:    userSvc,
		notifSvc:   notifSvc,
	}
}

// recordContactRequest 保存联系人请求，字段为建立联系时对方的资料
type recordContactRequest struct {
	ContactWallet            string   `json:"contact_wallet"`
	ContactUsername          string   `json:"contact_username"`
	ContactName              string   `json:"contact_name"`
	ContactCountry           string   `json:"contact_country"`
	ContactCountryCode       string   `json:"contact_country_code"`
	ContactProfilePictureURL *string  `json:"contact_profile_picture_url"`
	ContactNativeLanguages   []string `json:"contact_native_languages"`
	ContactLearningLanguages []string `json:"contact_learning_languages"`
}

func (r recordContactRequest) snapshot() model.ContactSnapshot {
	return model.ContactSnapshot{
		Username:          r.ContactUsername,
		Name:              r.ContactName,
		Country:           r.ContactCountry,
		CountryCode:       r.ContactCountryCode,
		ProfilePictureURL: r.ContactProfilePictureURL,
		NativeLanguages:   r.ContactNativeLanguages,
		LearningLanguages: r.ContactLearningLanguages,
	}
}

// ListContacts 获取联系人列表
// GET /api/v1/contacts
func (h *ContactHandler) ListContacts(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	contacts, err := h.contactSvc.ListContacts(c.Request.Context(), wallet)
	if err != nil {
		// 列表页不报错，降级为空列表
		utils.Logger().WithError(err).WithField("wallet", wallet).Warn("list contacts failed, returning empty list")
		contacts = []model.ContactView{}
	}

	utils.SuccessResponse(c, gin.H{"contacts": contacts})
}

// RecordContact 保存联系人，首次建立联系时通知对方
// POST /api/v1/contacts
func (h *ContactHandler) RecordContact(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	var req recordContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	contact, isNew, err := h.contactSvc.RecordContact(c.Request.Context(), wallet, req.ContactWallet, req.snapshot())
	if err != nil {
		respondError(c, err)
		return
	}

	if isNew && h.notifSvc != nil && h.notifSvc.ContactNotificationsEnabled() {
		h.notifyNewContact(c.Request.Context(), wallet, contact.ContactWallet)
	}

	utils.SuccessResponse(c, gin.H{
		"contact":      contact,
		"isNewContact": isNew,
	})
}

// notifyNewContact 通知失败只记录日志，不影响保存结果
func (h *ContactHandler) notifyNewContact(ctx context.Context, senderWallet, targetWallet string) {
	log := utils.Logger().WithField("wallet", senderWallet).WithField("target", targetWallet)

	var sender model.ProfileView
	if user, err := h.userSvc.GetUser(ctx, senderWallet); err == nil {
		sender = user.Profile()
	} else if !errors.Is(err, service.ErrNotFound) {
		log.WithError(err).Warn("failed to load sender profile")
	}

	if err := h.notifSvc.SendContactNotification(ctx, sender, targetWallet); err != nil {
		log.WithError(err).Warn("failed to send contact notification")
	}
}
