package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例，Init 之前为 Nop
var Log = zap.NewNop()

// New 根据环境和级别创建 zap 日志
// env 为 prod 时输出 JSON，其余输出便于阅读的 console 格式
func New(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" || env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Init 初始化全局日志
func Init(level, env string) error {
	l, err := New(level, env)
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync 刷新缓冲
func Sync() {
	_ = Log.Sync()
}
