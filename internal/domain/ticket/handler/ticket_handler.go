package handler

import (
	"net/http"

	"mini_shop/internal/domain/ticket/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/response"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(s service.TicketService) *TicketHandler {
	return &TicketHandler{service: s}
}

// CreateTicketInput 提交工单输入
type CreateTicketInput struct {
	Subject     string `json:"subject" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
}

// CreateTicket 提交工单
// @Summary 提交工单
// @Tags Ticket
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body CreateTicketInput true "工单内容"
// @Success 201 {object} response.Response{data=model.Ticket}
// @Router /tickets [post]
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var input CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, validate.Message(err))
		return
	}

	ticket, err := h.service.CreateTicket(c.Request.Context(), middleware.GetUserID(c), input.Subject, input.Description)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Ticket submitted successfully", ticket)
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	tickets, err := h.service.ListTickets(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, tickets)
}

// ListAllTickets 全部工单 (管理员)
func (h *TicketHandler) ListAllTickets(c *gin.Context) {
	tickets, err := h.service.ListAllTickets(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, tickets)
}

// ResolveTicket 解决工单 (管理员)
// @Summary 解决工单
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "工单ID"
// @Success 200 {object} response.Response{data=model.Ticket}
// @Router /admin/tickets/{id}/resolve [post]
func (h *TicketHandler) ResolveTicket(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	ticket, err := h.service.ResolveTicket(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Ticket resolved successfully", ticket)
}

// CloseTicket 关闭工单 (管理员)
func (h *TicketHandler) CloseTicket(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	ticket, err := h.service.CloseTicket(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Ticket closed successfully", ticket)
}
