package review

import (
	"fmt"

	orderRepo "mini_shop/internal/domain/order/repository"
	"mini_shop/internal/domain/review/handler"
	"mini_shop/internal/domain/review/model"
	"mini_shop/internal/domain/review/repository"
	"mini_shop/internal/domain/review/service"
	userRepo "mini_shop/internal/domain/user/repository"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReviewModule 评价模块
type ReviewModule struct{}

func init() {
	registry.Register(&ReviewModule{})
}

func (m *ReviewModule) Name() string {
	return "review"
}

func (m *ReviewModule) Priority() int {
	return 20
}

func (m *ReviewModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Review{}); err != nil {
			return fmt.Errorf("migrate reviews: %w", err)
		}
	}

	// 1. 依赖注入
	rRepo := repository.NewReviewRepository(ctx.DB)
	rService := service.NewReviewService(
		rRepo,
		orderRepo.NewOrderRepository(ctx.DB),
		userRepo.NewUserRepository(ctx.DB),
		ctx.Config.Shop.AllowDuplicateReviews,
		ctx.Logger,
		ctx.Now,
	)
	rHandler := handler.NewReviewHandler(rService)

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, rHandler)

	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.ReviewHandler) {
	g := r.Group("/reviews")
	g.Use(middleware.AuthMiddleware(j))
	{
		g.GET("", h.ListReviews)
		g.POST("", h.SubmitReview)
	}
}
