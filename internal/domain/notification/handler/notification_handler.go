package handler

import (
	"mini_shop/internal/domain/notification/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/pkg/response"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// ListNotifications 未读通知
// @Summary 未读通知
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Notification}
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.service.ListNotifications(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, notifications)
}

// MarkRead 标记已读
// @Summary 标记已读
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param type path string true "return 或 ticket"
// @Param id path int true "订单或工单ID"
// @Success 200 {object} response.Response
// @Router /notifications/mark-read/{type}/{id} [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("type"), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Message(c, "Notification marked as read", nil)
}
