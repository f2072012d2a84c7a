package objectstore

import (
	"context"
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

const (
	DriverS3     = "s3"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

type Config struct {
	Driver          string `mapstructure:"Driver"`
	Endpoint        string `mapstructure:"Endpoint"`
	Region          string `mapstructure:"Region"`
	AccessKeyID     string `mapstructure:"AccessKeyID"`
	SecretAccessKey string `mapstructure:"SecretAccessKey"`
	Bucket          string `mapstructure:"Bucket"`
	UseSSL          bool   `mapstructure:"UseSSL"`
	UsePathStyle    bool   `mapstructure:"UsePathStyle"`
	MaxAttempts     int    `mapstructure:"MaxAttempts"`
	// PublicBaseURL используется только драйвером memory для построения presigned URL
	PublicBaseURL string `mapstructure:"PublicBaseURL"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("Driver", DriverS3)
	v.SetDefault("Endpoint", "https://storage.yandexcloud.net")
	v.SetDefault("Region", "ru-central1")
	v.SetDefault("UseSSL", true)
	v.SetDefault("MaxAttempts", 3)

	v.BindEnv("Driver", "STORAGE_DRIVER")
	v.BindEnv("Endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("Region", "STORAGE_REGION")
	v.BindEnv("AccessKeyID", "STORAGE_ACCESS_KEY")
	v.BindEnv("SecretAccessKey", "STORAGE_SECRET_KEY")
	v.BindEnv("Bucket", "STORAGE_BUCKET")
	v.BindEnv("UseSSL", "STORAGE_USE_SSL")
	v.BindEnv("UsePathStyle", "STORAGE_PATH_STYLE")
	v.BindEnv("PublicBaseURL", "STORAGE_PUBLIC_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: storage config %s not read, using environment: %v\n", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}
	cfg.Driver = strings.ToLower(cfg.Driver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет, что все необходимые поля заполнены
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverS3, DriverMinio:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.AccessKeyID == "" {
		return fmt.Errorf("AccessKeyID is required")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("SecretAccessKey is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("Bucket is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("Endpoint is required")
	}
	return nil
}

// New создает хранилище по драйверу из конфигурации и проверяет подключение
func New(ctx context.Context, conf *Config) (Store, error) {
	switch conf.Driver {
	case DriverMinio:
		store, err := NewMinioStore(conf)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return NewMemoryStore(conf.PublicBaseURL), nil
	default:
		store, err := NewS3Store(conf)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
}
