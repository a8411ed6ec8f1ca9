package ticket

import (
	"fmt"

	"mini_shop/internal/domain/ticket/handler"
	"mini_shop/internal/domain/ticket/model"
	"mini_shop/internal/domain/ticket/repository"
	"mini_shop/internal/domain/ticket/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TicketModule 客服工单模块
type TicketModule struct{}

func init() {
	registry.Register(&TicketModule{})
}

func (m *TicketModule) Name() string {
	return "ticket"
}

func (m *TicketModule) Priority() int {
	return 20
}

func (m *TicketModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Ticket{}); err != nil {
			return fmt.Errorf("migrate tickets: %w", err)
		}
	}

	// 1. 依赖注入
	tRepo := repository.NewTicketRepository(ctx.DB)
	tService := service.NewTicketService(tRepo, ctx.Metrics, ctx.Logger, ctx.Now)
	tHandler := handler.NewTicketHandler(tService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, tHandler)

	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.TicketHandler) {
	g := r.Group("/tickets")
	g.Use(middleware.AuthMiddleware(j))
	{
		g.POST("", h.CreateTicket)
		g.GET("", h.ListTickets)
	}

	admin := r.Group("/admin/tickets")
	admin.Use(middleware.AuthMiddleware(j), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListAllTickets)
		admin.POST("/:id/resolve", h.ResolveTicket)
		admin.POST("/:id/close", h.CloseTicket)
	}
}
