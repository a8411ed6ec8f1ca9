package order

import (
	"fmt"

	"mini_shop/internal/domain/order/handler"
	"mini_shop/internal/domain/order/model"
	"mini_shop/internal/domain/order/repository"
	"mini_shop/internal/domain/order/service"
	productRepo "mini_shop/internal/domain/product/repository"
	productService "mini_shop/internal/domain/product/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/database"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单与退货模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖商品表
	return 10
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
			return fmt.Errorf("migrate orders: %w", err)
		}
	}

	// 1. 依赖注入
	oRepo := repository.NewOrderRepository(ctx.DB)
	pRepo := productRepo.NewProductRepository(ctx.DB)
	catalog := productService.NewCatalogCache(ctx.Cache, ctx.Metrics, ctx.Logger)
	oService := service.NewOrderService(
		oRepo, pRepo, database.NewTransactor(ctx.DB), catalog, ctx.Metrics, ctx.Logger,
		service.Options{
			ReturnWindowDays:    ctx.Config.Shop.ReturnWindowDays,
			DefaultReturnReason: ctx.Config.Shop.DefaultReturnReason,
		},
		ctx.Now,
	)
	oHandler := handler.NewOrderHandler(oService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, oHandler)

	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.OrderHandler) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware(j))
	{
		g.GET("", h.ListOrders)
		g.POST("", h.CreateOrder)
		g.GET("/:id", h.GetOrder)
		g.PUT("/:id", h.UpdateOrder)
		g.DELETE("/:id", h.DeleteOrder)
		g.POST("/:id/return", h.RequestReturn)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(j), middleware.AdminMiddleware())
	{
		admin.GET("/pending-returns", h.PendingReturns)
		admin.POST("/returns/:id/approve", h.ApproveReturn)
		admin.POST("/returns/:id/reject", h.RejectReturn)
	}
}
