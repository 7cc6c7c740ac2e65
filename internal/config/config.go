package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API       *APIConfig
	Gin       *GinConfig
	Database  *DatabaseConfig
	Redis     *RedisConfig
	Storage   *StorageConfig
	Billing   *BillingConfig
	Inventory *InventoryConfig
	Jobs      *JobsConfig
}

type APIConfig struct {
	Environment        string
	LogLevel           string `mapstructure:"log_level"`
	Port               string
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
}

type GinConfig struct {
	Mode string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string `mapstructure:"sslmode"`
	DSN      string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

type StorageConfig struct {
	Disk              string
	LocalRoot         string   `mapstructure:"local_root"`
	BaseURL           string   `mapstructure:"base_url"`
	MaxUploadSize     int64    `mapstructure:"max_upload_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	S3Bucket          string   `mapstructure:"s3_bucket"`
	S3Region          string   `mapstructure:"s3_region"`
	S3Key             string   `mapstructure:"s3_key"`
	S3Secret          string   `mapstructure:"s3_secret"`
	S3Endpoint        string   `mapstructure:"s3_endpoint"`
}

type BillingConfig struct {
	NumberPrefix string `mapstructure:"number_prefix"`
}

type InventoryConfig struct {
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

type JobsConfig struct {
	Concurrency int
	// ScanCron schedules the full low-stock scan; empty disables it.
	ScanCron string `mapstructure:"scan_cron"`
}

// Load reads the YAML file at path. Every key can be overridden by an
// environment variable, e.g. database.driver -> DATABASE_DRIVER.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	return conf, nil
}

// Watch calls onChange with the freshly decoded config every time the file at
// path is written.
func Watch(path string, onChange func(*AppConfig)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) {
			return
		}
		conf := &AppConfig{}
		if err := v.Unmarshal(conf); err != nil {
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

// setDefaults registers every key so AutomaticEnv can override the ones the
// YAML file leaves out.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.log_level", "")
	v.SetDefault("api.port", "5000")
	v.SetDefault("api.base_url", "localhost:5000")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.jwt_ttl", 24*time.Hour)
	v.SetDefault("api.rate_limit_per_minute", 20)

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "inventory")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.disk", "local")
	v.SetDefault("storage.local_root", "uploads")
	v.SetDefault("storage.base_url", "/uploads")
	v.SetDefault("storage.max_upload_size", 16<<20)
	v.SetDefault("storage.allowed_extensions", []string{"pdf", "doc", "docx", "jpg", "jpeg", "png", "txt", "xlsx"})
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_key", "")
	v.SetDefault("storage.s3_secret", "")
	v.SetDefault("storage.s3_endpoint", "")

	v.SetDefault("billing.number_prefix", "BT")
	v.SetDefault("inventory.low_stock_threshold", 5)
	v.SetDefault("jobs.concurrency", 5)
	v.SetDefault("jobs.scan_cron", "0 7 * * *")
}
