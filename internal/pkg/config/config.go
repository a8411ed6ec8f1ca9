package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	App       AppConfig       `mapstructure:"app"`
	Shop      ShopConfig      `mapstructure:"shop"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig driver 为 memory 时使用进程内 SQLite，其余字段仅 postgres 使用
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	Host        string `mapstructure:"host"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	Port        string `mapstructure:"port"`
	SSLMode     string `mapstructure:"sslmode"`
	TimeZone    string `mapstructure:"timezone"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
	Issuer string `mapstructure:"issuer"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ShopConfig 业务规则
type ShopConfig struct {
	ReturnWindowDays      int    `mapstructure:"return_window_days"`
	DefaultReturnReason   string `mapstructure:"default_return_reason"`
	AllowDuplicateReviews bool   `mapstructure:"allow_duplicate_reviews"`
	SeedProducts          bool   `mapstructure:"seed_products"`
}

// AdminConfig 启动时创建的管理员账号
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

type RateLimitConfig struct {
	QPS     float64       `mapstructure:"qps"`
	Burst   int           `mapstructure:"burst"`
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	placeholderSecret = "change_me_to_a_long_random_secret"
)

// TokenTTL JWT 有效期
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.Expire) * time.Hour
}

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == placeholderSecret {
		return errors.New("please set a secure JWT secret (jwt.secret or JWT_SECRET)")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}
	if c.JWT.Expire <= 0 {
		return errors.New("jwt.expire must be positive")
	}

	// 数据库配置验证
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return errors.New("database configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Shop.ReturnWindowDays <= 0 {
		return errors.New("shop.return_window_days must be positive")
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("jwt.issuer", "mini-shop")
	v.SetDefault("redis.db", 0)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("shop.return_window_days", 30)
	v.SetDefault("shop.default_return_reason", "No reason provided")
	v.SetDefault("shop.allow_duplicate_reviews", false)
	v.SetDefault("shop.seed_products", true)
	v.SetDefault("admin.username", "admin")
	// 未设置默认值的键不会被 AutomaticEnv 解析
	for _, key := range []string{
		"database.host", "database.user", "database.password", "database.dbname",
		"redis.addr", "redis.password", "jwt.secret", "admin.password", "admin.email",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("ratelimit.qps", 100)
	v.SetDefault("ratelimit.burst", 200)
	v.SetDefault("ratelimit.idle_ttl", "10m")
	v.SetDefault("cors.allow_origins", []string{"*"})
}

// Load 加载配置
// path 为空时根据 APP_ENV 在 ./configs 与当前目录查找 config[.env].yaml
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// 获取环境变量，默认为dev
		env := os.Getenv("APP_ENV")
		configName := "config"
		if env != "" && env != "dev" {
			configName = "config." + env
		}
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// 绑定环境变量 SHOP_SERVER_PORT -> server.port
	v.SetEnvPrefix("shop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// 手动覆盖，兼容部署环境中的通用变量名
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}
