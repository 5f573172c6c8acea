package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"firehorse/global"
	"firehorse/providers"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	App struct {
		Name        string
		Port        string
		Env         string
		SeedSamples    bool     `mapstructure:"seed_samples"`
		TrustedProxies []string `mapstructure:"trusted_proxies"`
	}
	Database struct {
		Driver       string
		Dsn          string
		MaxIdleConns int
		MaxOpenConns int
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	RabbitMQ struct {
		Url   string
		Queue string
	}
	Admin struct {
		PasswordHash string        `mapstructure:"password_hash"`
		JWTSecret    string        `mapstructure:"jwt_secret"`
		TokenTTL     time.Duration `mapstructure:"token_ttl"`
	}
	Stats struct {
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	}
	Providers []providers.Config
}

var AppConfig *Config

// InitConfig 读取配置并初始化日志、数据库、Redis、RabbitMQ
func InitConfig() {
	cfg, err := LoadConfig("./config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	AppConfig = cfg

	if err := initLogger(cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logProviders(cfg.Providers)

	initDB()
	initRedis()
	initRabbit()
}

// LoadConfig config.yml 可选，环境变量（含 .env）覆盖文件里的值
func LoadConfig(dir string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.App.Name = getEnvOrDefault("APP_NAME", orDefault(cfg.App.Name, "Fire Horse Art Gallery"))
	cfg.App.Port = getEnvOrDefault("PORT", orDefault(cfg.App.Port, "10000"))
	cfg.App.Env = getEnvOrDefault("APP_ENV", orDefault(cfg.App.Env, "production"))
	cfg.App.SeedSamples = getEnvBool("SEED_SAMPLES", cfg.App.SeedSamples)
	if v := os.Getenv("TRUSTED_PROXIES"); strings.TrimSpace(v) != "" {
		cfg.App.TrustedProxies = splitList(v)
	}

	cfg.Database.Driver = getEnvOrDefault("DATABASE_DRIVER", orDefault(cfg.Database.Driver, "sqlite"))
	cfg.Database.Dsn = getEnvOrDefault("DATABASE_DSN", orDefault(cfg.Database.Dsn, "gallery.db"))

	cfg.Redis.Addr = getEnvOrDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.RabbitMQ.Url = getEnvOrDefault("RABBITMQ_URL", cfg.RabbitMQ.Url)
	cfg.RabbitMQ.Queue = getEnvOrDefault("RABBITMQ_QUEUE", orDefault(cfg.RabbitMQ.Queue, "artwork.events"))

	cfg.Admin.PasswordHash = getEnvOrDefault("ADMIN_PASSWORD_HASH", cfg.Admin.PasswordHash)
	cfg.Admin.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.Admin.JWTSecret)
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 12 * time.Hour
	}

	// 环境变量里的主 provider 排在最前；一个都没配时也要有一个（没有 key 会自动降级）
	apiKey := firstNonEmpty(os.Getenv("IMAGE_API_KEY"), os.Getenv("COMFY_API_KEY"), os.Getenv("API_KEY"))
	if apiKey != "" || len(cfg.Providers) == 0 {
		primary := providers.Config{
			Name:    getEnvOrDefault("IMAGE_PROVIDER_NAME", "primary"),
			Kind:    getEnvOrDefault("IMAGE_PROVIDER_KIND", providers.KindGemini),
			BaseURL: getEnvOrDefault("IMAGE_API_BASE_URL", "https://api.mmw.ink"),
			APIKey:  apiKey,
			Model:   getEnvOrDefault("IMAGE_MODEL", "gemini-3-pro-image-preview-2k"),
			Timeout: getEnvDuration("IMAGE_TIMEOUT", providers.DefaultTimeout),
		}
		cfg.Providers = append([]providers.Config{primary}, cfg.Providers...)
	}
}

// logProviders 只打印 key 前缀
func logProviders(list []providers.Config) {
	for _, p := range list {
		preview := "not set"
		if len(p.APIKey) > 8 {
			preview = p.APIKey[:8] + "..."
		} else if p.APIKey != "" {
			preview = "set"
		}
		global.Logger.Info("image provider configured",
			zap.String("name", p.Name),
			zap.String("kind", p.Kind),
			zap.String("base_url", p.BaseURL),
			zap.String("model", p.Model),
			zap.String("api_key", preview))
	}
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
