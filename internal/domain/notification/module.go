package notification

import (
	"mini_shop/internal/domain/notification/handler"
	"mini_shop/internal/domain/notification/service"
	orderRepo "mini_shop/internal/domain/order/repository"
	ticketRepo "mini_shop/internal/domain/ticket/repository"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// NotificationModule 通知模块，没有自己的表
type NotificationModule struct{}

func init() {
	registry.Register(&NotificationModule{})
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Priority() int {
	// 依赖订单表和工单表
	return 30
}

func (m *NotificationModule) Init(ctx *registry.ModuleContext) error {
	nService := service.NewNotificationService(
		orderRepo.NewOrderRepository(ctx.DB),
		ticketRepo.NewTicketRepository(ctx.DB),
	)
	nHandler := handler.NewNotificationHandler(nService)

	setupRoutes(ctx.Router, ctx.JWT, nHandler)
	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.NotificationHandler) {
	g := r.Group("/notifications")
	g.Use(middleware.AuthMiddleware(j))
	{
		g.GET("", h.ListNotifications)
		g.POST("/mark-read/:type/:id", h.MarkRead)
	}
}
