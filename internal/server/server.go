package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	// 各业务模块通过 init 自注册
	_ "mini_shop/internal/domain/common"
	_ "mini_shop/internal/domain/notification"
	_ "mini_shop/internal/domain/order"
	_ "mini_shop/internal/domain/payment"
	_ "mini_shop/internal/domain/product"
	_ "mini_shop/internal/domain/review"
	_ "mini_shop/internal/domain/ticket"
	_ "mini_shop/internal/domain/user"
	"mini_shop/internal/pkg/config"
	"mini_shop/internal/pkg/middleware"
	"mini_shop/internal/pkg/registry"
	"mini_shop/pkg/cache"
	"mini_shop/pkg/metrics"
	"mini_shop/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Server HTTP 服务
type Server struct {
	engine *gin.Engine
	cfg    *config.Config
	log    *zap.Logger
}

// Options 可选依赖
type Options struct {
	// Cache 为空时使用进程内缓存
	Cache cache.CacheService
	// Now 为空时使用 time.Now
	Now func() time.Time
}

// New 组装中间件并初始化所有模块
func New(cfg *config.Config, log *zap.Logger, db *gorm.DB, opts Options) (*Server, error) {
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	reg := metrics.NewRegistry()
	collector := metrics.NewMetricsCollector(reg)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.MetricsMiddleware(collector),
		cors.New(corsConfig(cfg.CORS)),
	)
	if cfg.RateLimit.QPS > 0 {
		limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.QPS), cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		engine.Use(middleware.RateLimitMiddleware(limiter))
	}

	ctx := &registry.ModuleContext{
		DB:       db,
		Cache:    opts.Cache,
		Router:   engine,
		Config:   cfg,
		Logger:   log,
		JWT:      utils.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL()),
		Metrics:  collector,
		Gatherer: reg,
		Now:      opts.Now,
	}
	if err := registry.InitModules(ctx); err != nil {
		return nil, err
	}

	return &Server{engine: engine, cfg: cfg, log: log}, nil
}

// Handler 供测试直接调用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 阻塞直到 ctx 取消，随后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "X-Trace-ID")
	cc.ExposeHeaders = []string{"X-Trace-ID"}
	if len(c.AllowOrigins) == 0 || (len(c.AllowOrigins) == 1 && c.AllowOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowOrigins
	}
	return cc
}
