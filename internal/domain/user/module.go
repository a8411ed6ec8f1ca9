package user

import (
	"context"
	"fmt"

	"mini_shop/internal/domain/user/handler"
	"mini_shop/internal/domain/user/model"
	"mini_shop/internal/domain/user/repository"
	"mini_shop/internal/domain/user/service"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/internal/pkg/validate"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，因为其他模块可能依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.User{}); err != nil {
			return fmt.Errorf("migrate users: %w", err)
		}
	}
	validate.Register()

	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewUserService(userRepo, ctx.JWT, ctx.Logger)
	userHandler := handler.NewUserHandler(userService)

	// 2. 管理员账号
	admin := ctx.Config.Admin
	if err := userService.EnsureAdmin(context.Background(), admin.Username, admin.Password, admin.Email); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// 3. 路由注册
	setupRoutes(ctx.Router, ctx.JWT, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, j *utils.JWT, h *handler.UserHandler) {
	g := r.Group("/users")

	// 公开路由
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	// 受保护的路由
	authorized := g.Group("")
	authorized.Use(middleware.AuthMiddleware(j))
	{
		authorized.GET("/profile", h.GetProfile)
		authorized.PUT("/profile", h.UpdateProfile)
		authorized.PUT("/change-password", h.ChangePassword)
	}
}
