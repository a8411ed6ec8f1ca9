package registry

import (
	"fmt"
	"sort"
	"time"

	"mini_shop/internal/pkg/config"
	"mini_shop/pkg/cache"
	"mini_shop/pkg/metrics"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	DB       *gorm.DB
	Cache    cache.CacheService
	Router   *gin.Engine
	Config   *config.Config
	Logger   *zap.Logger
	JWT      *utils.JWT
	Metrics  *metrics.MetricsCollector
	// Gatherer /metrics 暴露的注册表
	Gatherer prometheus.Gatherer
	// Now 当前时间，测试中可替换
	Now func() time.Time
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表，模块本身无状态，状态都在 ModuleContext 中
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	// 优先级相同时按名称排序，保证路由注册顺序稳定
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})

	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		ctx.Logger.Debug("module initialized", zap.String("module", module.Name()))
	}

	return nil
}
