package handler

import (
	"errors"
	"io"
	"net/http"

	"mini_shop/internal/domain/order/model"
	"mini_shop/internal/domain/order/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/response"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// OrderItemInput 购物车中的商品行，id 为商品 ID
type OrderItemInput struct {
	ID       uint            `json:"id" binding:"required"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price" swaggertype:"number"`
	Quantity int             `json:"quantity" binding:"gte=0,lte=1000000"`
}

// CreateOrderInput 下单输入
type CreateOrderInput struct {
	Items           []OrderItemInput      `json:"items" binding:"required,min=1,dive"`
	Total           *decimal.Decimal      `json:"total" swaggertype:"number"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentInfo     model.PaymentInfo     `json:"paymentInfo"`
}

// UpdateOrderInput 修改订单输入
type UpdateOrderInput struct {
	ShippingAddress *model.ShippingAddress `json:"shippingAddress"`
	PaymentInfo     *model.PaymentInfo     `json:"paymentInfo"`
}

// ReturnInput 退货申请输入
type ReturnInput struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CreateOrder 下单
// @Summary 下单
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CreateOrderInput true "订单信息"
// @Success 201 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response "库存不足"
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	items := make([]service.ItemInput, 0, len(input.Items))
	for _, it := range input.Items {
		items = append(items, service.ItemInput{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	order, err := h.service.CreateOrder(c.Request.Context(), middleware.GetUserID(c), service.CreateParams{
		Items:           items,
		Total:           input.Total,
		ShippingAddress: input.ShippingAddress,
		PaymentInfo:     input.PaymentInfo,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Order created successfully", order)
}

// ListOrders 当前用户的订单，最新的在前
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	order, err := h.service.UpdateOrder(c.Request.Context(), id, middleware.GetUserID(c), service.UpdateParams{
		ShippingAddress: input.ShippingAddress,
		PaymentInfo:     input.PaymentInfo,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if err := h.service.DeleteOrder(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Order deleted successfully", nil)
}

// RequestReturn 申请退货
// @Summary 申请退货
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param input body ReturnInput false "退货原因"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response "状态不合法或已超过退货期限"
// @Failure 404 {object} response.Response "订单不存在"
// @Router /orders/{id}/return [post]
func (h *OrderHandler) RequestReturn(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var input ReturnInput
	// 退货原因可以为空；分块传输时 ContentLength 为 -1，按实际内容判断
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
			return
		}
	}

	order, err := h.service.RequestReturn(c.Request.Context(), id, middleware.GetUserID(c), input.Reason)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Return request submitted successfully", order)
}

// PendingReturns 待处理的退货申请 (管理员)
// @Summary 待处理的退货申请
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Order}
// @Router /admin/pending-returns [get]
func (h *OrderHandler) PendingReturns(c *gin.Context) {
	orders, err := h.service.PendingReturns(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, orders)
}

// ApproveReturn 同意退货 (管理员)
// @Summary 同意退货
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Router /admin/returns/{id}/approve [post]
func (h *OrderHandler) ApproveReturn(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	order, err := h.service.ApproveReturn(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Return approved successfully", order)
}

// RejectReturn 拒绝退货 (管理员)
// @Summary 拒绝退货
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=model.Order}
// @Router /admin/returns/{id}/reject [post]
func (h *OrderHandler) RejectReturn(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	order, err := h.service.RejectReturn(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Return rejected successfully", order)
}
