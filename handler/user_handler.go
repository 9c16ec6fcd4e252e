package handler

import (
	"lingua/middleware"
	"lingua/model"
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc *service.UserService
}

func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// SearchUsers 搜索语伴
// GET /api/v1/users?language=&exclude=&sort=best|newest
func (h *UserHandler) SearchUsers(c *gin.Context) {
	filter := service.UserFilter{
		Language:      c.Query("language"),
		ExcludeWallet: c.Query("exclude"),
		Sort:          c.DefaultQuery("sort", service.SortNewest),
	}
	// 未传 exclude 时默认排除自己
	if filter.ExcludeWallet == "" {
		if wallet, ok := middleware.GetWallet(c); ok {
			filter.ExcludeWallet = wallet
		}
	}

	users, err := h.userSvc.SearchUsers(c.Request.Context(), filter)
	if err != nil {
		utils.Logger().WithError(err).Warn("search users failed, returning empty list")
		users = []model.User{}
	}

	utils.SuccessResponse(c, gin.H{"users": users})
}

// UpsertUser 保存自己的资料
// POST /api/v1/users
func (h *UserHandler) UpsertUser(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	var req service.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userSvc.UpsertUser(c.Request.Context(), wallet, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// GetUser 按钱包地址获取资料
// GET /api/v1/users/:wallet
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetUser(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}
