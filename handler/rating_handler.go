package handler

import (
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingSvc *service.RatingService
}

func NewRatingHandler(ratingSvc *service.RatingService) *RatingHandler {
	return &RatingHandler{ratingSvc: ratingSvc}
}

// GetMyRating 获取自己对某人的评分
// GET /api/v1/ratings?rated_wallet=
func (h *RatingHandler) GetMyRating(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	rating, err := h.ratingSvc.GetMyRating(c.Request.Context(), wallet, c.Query("rated_wallet"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"rating": rating})
}

// SubmitRating 点赞/点踩，重复提交相同评分即取消
// POST /api/v1/ratings
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	var req struct {
		RatedWallet string `json:"rated_wallet"`
		Rating      *int   `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request. need rated_wallet and rating (1 or -1)")
		return
	}

	value := 0
	if req.Rating != nil {
		value = *req.Rating
	}

	myRating, err := h.ratingSvc.SubmitRating(c.Request.Context(), wallet, req.RatedWallet, value)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"success":  true,
		"myRating": myRating,
	})
}

// GetMyRatings 批量获取自己对多人的评分
// POST /api/v1/ratings/batch
func (h *RatingHandler) GetMyRatings(c *gin.Context) {
	wallet, ok := currentWallet(c)
	if !ok {
		return
	}

	var req struct {
		WalletAddresses []string `json:"wallet_addresses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request. need wallet_addresses array")
		return
	}

	ratings, err := h.ratingSvc.GetMyRatings(c.Request.Context(), wallet, req.WalletAddresses)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"ratings": ratings})
}
