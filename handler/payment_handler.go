package handler

import (
	"strings"

	"lingua/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct{}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

// InitiatePayment 生成支付引用 id（前端拿去发起 World 支付）
// POST /api/v1/payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	utils.SuccessResponse(c, gin.H{"id": id})
}
