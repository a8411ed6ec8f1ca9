package commands

import (
	"context"
	"fmt"
	"os"

	"mini_shop/internal/pkg/config"
	"mini_shop/pkg/cache"
	"mini_shop/pkg/database"
	"mini_shop/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configPath string

// rootCmd 默认执行 serve
var rootCmd = &cobra.Command{
	Use:   "mini-shop",
	Short: "Mini Shop API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute 运行根命令
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml)")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

// app 命令共用的依赖
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	cache cache.CacheService
}

func (r *app) Close() {
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Sync()
}

func bootstrap(ctx context.Context) (*app, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Log

	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	var c cache.CacheService
	rdb, err := database.InitRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
		c = cache.NewMemoryCache()
	case rdb == nil:
		c = cache.NewMemoryCache()
	default:
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		c = cache.NewRedisCache(rdb, "mini_shop")
	}

	return &app{cfg: cfg, log: log, db: db, cache: c}, nil
}
