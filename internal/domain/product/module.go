package product

import (
	"context"
	"fmt"

	"mini_shop/internal/domain/product/handler"
	"mini_shop/internal/domain/product/model"
	"mini_shop/internal/domain/product/repository"
	"mini_shop/internal/domain/product/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductModule 商品模块
type ProductModule struct{}

func init() {
	registry.Register(&ProductModule{})
}

func (m *ProductModule) Name() string {
	return "product"
}

func (m *ProductModule) Priority() int {
	return 5
}

func (m *ProductModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Product{}); err != nil {
			return fmt.Errorf("migrate products: %w", err)
		}
	}

	// 1. 依赖注入
	pRepo := repository.NewProductRepository(ctx.DB)
	catalog := service.NewCatalogCache(ctx.Cache, ctx.Metrics, ctx.Logger)
	pService := service.NewProductService(pRepo, catalog, ctx.Logger)
	pHandler := handler.NewProductHandler(pService)

	if ctx.Config.Shop.SeedProducts {
		if err := pService.SeedDemoProducts(context.Background()); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}

	// 2. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.ProductHandler) {
	g := r.Group("/products")
	g.Use(middleware.AuthMiddleware(j))
	{
		g.GET("", h.ListProducts)
		g.GET("/:id", h.GetProduct)
	}

	// 需要管理员权限的路由组
	admin := r.Group("/admin/products")
	admin.Use(middleware.AuthMiddleware(j), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.PUT("/:id/stock", h.UpdateStock)
		admin.DELETE("/:id", h.DeleteProduct)
	}
}
