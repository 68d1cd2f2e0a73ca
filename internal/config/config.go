package config

import (
	"fmt"
	"strings"

	"github.com/bizdesk/internal/constants"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Upload   UploadConfig   `mapstructure:"upload"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Console  ConsoleConfig  `mapstructure:"console"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release

	// ShutdownTimeoutSeconds 优雅退出时等待各服务停止的上限
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		Level:      c.Level,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver      string             `mapstructure:"driver"` // sqlite / postgres
	DSN         string             `mapstructure:"dsn"`
	Pool        DatabasePoolConfig `mapstructure:"pool"`
	SlowQueryMS int                `mapstructure:"slow_query_ms"`
}

// ToDBOptions 转换为 models.InitDB 参数
func (c DatabaseConfig) ToDBOptions() models.DBOptions {
	return models.DBOptions{
		Driver: c.Driver,
		DSN:    c.DSN,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           c.Pool.MaxOpenConns,
			MaxIdleConns:           c.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: c.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: c.Pool.ConnMaxIdleTimeSeconds,
		},
		SlowQueryMS: c.SlowQueryMS,
	}
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	Password            string `mapstructure:"password"`
	DB                  int    `mapstructure:"db"`
	Prefix              string `mapstructure:"prefix"`
	ReferenceTTLSeconds int    `mapstructure:"reference_ttl_seconds"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled             bool           `mapstructure:"enabled"`
	Host                string         `mapstructure:"host"`
	Port                int            `mapstructure:"port"`
	Password            string         `mapstructure:"password"`
	DB                  int            `mapstructure:"db"`
	Concurrency         int            `mapstructure:"concurrency"`
	Queues              map[string]int `mapstructure:"queues"`
	CleanupDelaySeconds int            `mapstructure:"cleanup_delay_seconds"` // 媒体清理任务延迟执行
	MaxRetry            int            `mapstructure:"max_retry"`
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxWidth          int      `mapstructure:"max_width"`
	MaxHeight         int      `mapstructure:"max_height"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// ConsoleConfig 商品编辑控制台配置
type ConsoleConfig struct {
	APIBaseURL             string `mapstructure:"api_base_url"`
	RequestTimeoutMS       int    `mapstructure:"request_timeout_ms"`
	UploadConcurrency      int    `mapstructure:"upload_concurrency"`
	ChildDeletionPolicy    string `mapstructure:"child_deletion_policy"` // replace / explicit
	SessionTTLMinutes      int    `mapstructure:"session_ttl_minutes"`
	PreviewMaxBytes        int    `mapstructure:"preview_max_bytes"`
	ListingCacheTTLSeconds int    `mapstructure:"listing_cache_ttl_seconds"`
	RateLimitWindowSeconds int    `mapstructure:"rate_limit_window_seconds"` // 上传与保存按 IP 限流，0 关闭
	RateLimitMaxRequests   int    `mapstructure:"rate_limit_max_requests"`
}

// Load 从 config.yml 加载配置，.env 中的变量优先作为环境变量注入
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debugw("dotenv_not_loaded", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")   // 从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := decode(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Console.ChildDeletionPolicy = NormalizeDeletionPolicy(cfg.Console.ChildDeletionPolicy)
	if cfg.Console.ChildDeletionPolicy == "" {
		return nil, fmt.Errorf("console.child_deletion_policy 仅支持 %s / %s",
			constants.DeletionPolicyReplace, constants.DeletionPolicyExplicit)
	}
	if cfg.Console.UploadConcurrency <= 0 {
		cfg.Console.UploadConcurrency = 1
	}
	return &cfg, nil
}

// NormalizeDeletionPolicy 归一化子记录删除策略，非法值返回空串
func NormalizeDeletionPolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.DeletionPolicyReplace:
		return constants.DeletionPolicyReplace
	case constants.DeletionPolicyExplicit:
		return constants.DeletionPolicyExplicit
	default:
		return ""
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "bizdesk.log")
	v.SetDefault("log.level", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/bizdesk.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("database.slow_query_ms", 500)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "bizdesk")
	v.SetDefault("redis.reference_ttl_seconds", 300)
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueDefault: 10,
	})
	v.SetDefault("queue.cleanup_delay_seconds", 300)
	v.SetDefault("queue.max_retry", 3)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 10485760)
	v.SetDefault("upload.allowed_types", []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	})
	v.SetDefault("upload.allowed_extensions", []string{
		".jpg",
		".jpeg",
		".png",
		".gif",
		".webp",
	})
	v.SetDefault("upload.max_width", 4096)
	v.SetDefault("upload.max_height", 4096)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("console.api_base_url", "http://127.0.0.1:8080/api/v1/admin")
	v.SetDefault("console.request_timeout_ms", 15000)
	v.SetDefault("console.upload_concurrency", 3)
	v.SetDefault("console.child_deletion_policy", constants.DeletionPolicyReplace)
	v.SetDefault("console.session_ttl_minutes", 60)
	v.SetDefault("console.preview_max_bytes", 262144)
	v.SetDefault("console.listing_cache_ttl_seconds", 60)
	v.SetDefault("console.rate_limit_window_seconds", 60)
	v.SetDefault("console.rate_limit_max_requests", 120)
}
