package database

import (
	"database/sql"
	"fmt"
	"time"

	"mini_shop/internal/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase 根据配置初始化数据库连接
func InitDatabase(cfg config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(cfg, debug, log)
	case config.DriverMemory:
		return NewMemory(debug)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// PostgresDSN 拼接 gorm 使用的 postgres DSN
func PostgresDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
}

func openPostgres(cfg config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(PostgresDSN(cfg)), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层 SQL DB 对象以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configureConnectionPool(sqlDB)

	log.Info("database connection pool configured",
		zap.String("host", cfg.Host),
		zap.String("dbname", cfg.DBName),
	)
	return db, nil
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true, // 禁用外键约束检查
		TranslateError:                           true, // 唯一键冲突转换为 gorm.ErrDuplicatedKey
	}
}

// configureConnectionPool 配置数据库连接池
func configureConnectionPool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 30)
}
