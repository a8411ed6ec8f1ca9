package payment

import (
	"fmt"

	orderRepo "mini_shop/internal/domain/order/repository"
	"mini_shop/internal/domain/payment/handler"
	"mini_shop/internal/domain/payment/model"
	"mini_shop/internal/domain/payment/repository"
	"mini_shop/internal/domain/payment/service"
	"mini_shop/internal/domain/payment/strategy"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 支付模块依赖订单模块，所以优先级较低
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Payment{}); err != nil {
			return fmt.Errorf("migrate payments: %w", err)
		}
	}

	// 1. 依赖注入
	pRepo := repository.NewPaymentRepository(ctx.DB)
	pService := service.NewPaymentService(pRepo, orderRepo.NewOrderRepository(ctx.DB), ctx.Logger)

	// 2. 注册支付策略
	pService.RegisterStrategy(model.MethodCard, strategy.NewStubStrategy())

	pHandler := handler.NewPaymentHandler(pService)

	// 3. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.PaymentHandler) {
	g := r.Group("/payments")
	g.Use(middleware.AuthMiddleware(j))
	{
		g.POST("", h.Pay)
	}
}
