package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"

	"mini_shop/internal/pkg/config"
	"mini_shop/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "config file")
	source := flag.String("path", "file://migrations", "migration source")
	down := flag.Bool("down", false, "roll back all migrations")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("migrations only apply to postgres", zap.String("driver", cfg.Database.Driver))
	}

	m, err := migrate.New(*source, migrationURL(cfg.Database))
	if err != nil {
		log.Fatal("failed to open migrations", zap.Error(err))
	}
	defer m.Close()

	if *down {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("Rollback successful")
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		// 数据库处于 dirty 状态时回退到上一个版本后重试
		var dirty migrate.ErrDirty
		if !errors.As(err, &dirty) {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Warn("database is dirty, forcing previous version", zap.Int("version", dirty.Version))
		if err := m.Force(dirty.Version - 1); err != nil {
			log.Fatal("failed to force version", zap.Error(err))
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("migration failed", zap.Error(err))
		}
	}

	log.Info("Migration successful")
}

func migrationURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}
