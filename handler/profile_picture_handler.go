package handler

import (
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type ProfilePictureHandler struct {
	pictureSvc *service.ProfilePictureService
}

func NewProfilePictureHandler(pictureSvc *service.ProfilePictureService) *ProfilePictureHandler {
	return &ProfilePictureHandler{pictureSvc: pictureSvc}
}

// GetProfilePicture 按用户名查询头像
// GET /api/v1/profile-picture?username=
func (h *ProfilePictureHandler) GetProfilePicture(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		utils.BadRequest(c, "missing username parameter")
		return
	}

	url, err := h.pictureSvc.Lookup(c.Request.Context(), username)
	if err != nil {
		utils.Logger().WithError(err).WithField("username", username).Warn("profile picture lookup failed")
		url = ""
	}

	var picture *string
	if url != "" {
		picture = &url
	}
	utils.SuccessResponse(c, gin.H{"profile_picture_url": picture})
}
