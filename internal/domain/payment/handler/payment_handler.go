package handler

import (
	"net/http"

	"mini_shop/internal/domain/payment/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type PayInput struct {
	OrderID uint             `json:"orderId" binding:"required"`
	Amount  *decimal.Decimal `json:"amount" swaggertype:"number"`
	Method  string           `json:"method" binding:"omitempty,max=32"`
}

type PayResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
}

// Pay 支付订单
// @Summary 支付订单
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body PayInput true "Payment Info"
// @Success 200 {object} response.Response{data=PayResult}
// @Router /payments [post]
func (h *PaymentHandler) Pay(c *gin.Context) {
	var input PayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	payment, err := h.service.Pay(c.Request.Context(), middleware.GetUserID(c), service.PayParams{
		OrderID: input.OrderID,
		Amount:  input.Amount,
		Method:  input.Method,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, PayResult{Success: true, TransactionID: payment.TransactionID})
}
