package config

import (
	"errors"
	"fmt"
	"io/fs"
	"s3drive/internal/domain"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultMaxUploadSize      int64 = 5 << 30
	defaultLargeFileThreshold int64 = 100 << 20
)

type Config struct {
	Server   ServerConfig   `mapstructure:"Server"`
	Database DatabaseConfig `mapstructure:"Database"`
	Upload   UploadConfig   `mapstructure:"Upload"`
	Cache    CacheConfig    `mapstructure:"Cache"`
}

type ServerConfig struct {
	Port     string `mapstructure:"Port"`
	BaseURL  string `mapstructure:"BaseURL"`
	GRPCPort string `mapstructure:"GRPCPort"`
	// AdminUsers - пользователи, которым доступны квоты и отчет о потерянных объектах
	AdminUsers []string `mapstructure:"AdminUsers"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

type UploadConfig struct {
	MaxSize            int64  `mapstructure:"MaxSize"`
	LargeFileThreshold int64  `mapstructure:"LargeFileThreshold"`
	KeyPrefix          string `mapstructure:"KeyPrefix"`
}

type CacheConfig struct {
	DownloadURLSize int           `mapstructure:"DownloadURLSize"`
	DownloadURLTTL  time.Duration `mapstructure:"DownloadURLTTL"`
}

// LoadDotEnv подгружает .env в окружение процесса. Отсутствие файла не ошибка.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("Server.Port", "2525")
	v.SetDefault("Server.GRPCPort", "50051")
	v.SetDefault("Database.SSLMode", "disable")
	v.SetDefault("Upload.MaxSize", defaultMaxUploadSize)
	v.SetDefault("Upload.LargeFileThreshold", defaultLargeFileThreshold)
	v.SetDefault("Upload.KeyPrefix", "uploads")
	v.SetDefault("Cache.DownloadURLSize", 1024)
	v.SetDefault("Cache.DownloadURLTTL", 50*time.Minute)

	v.BindEnv("Database.Host", "DATABASE_HOST")
	v.BindEnv("Database.Port", "DATABASE_PORT")
	v.BindEnv("Database.User", "DATABASE_USER")
	v.BindEnv("Database.Password", "DATABASE_PASSWORD")
	v.BindEnv("Database.Name", "DATABASE_NAME")
	v.BindEnv("Database.SSLMode", "DATABASE_SSLMODE")
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.GRPCPort", "GRPC_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Server.AdminUsers", "ADMIN_USERS")
	v.BindEnv("Upload.MaxSize", "UPLOAD_MAX_SIZE")
	v.BindEnv("Upload.LargeFileThreshold", "UPLOAD_LARGE_FILE_THRESHOLD")
	v.BindEnv("Upload.KeyPrefix", "UPLOAD_KEY_PREFIX")
	v.BindEnv("Cache.DownloadURLSize", "CACHE_DOWNLOAD_URL_SIZE")
	v.BindEnv("Cache.DownloadURLTTL", "CACHE_DOWNLOAD_URL_TTL")

	// Читаем конфигурацию из файла
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// из переменной окружения список приходит одной строкой
	cfg.Server.AdminUsers = splitList(cfg.Server.AdminUsers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.Host == "" ||
		c.Database.Port == "" ||
		c.Database.User == "" ||
		c.Database.Password == "" ||
		c.Database.Name == "" {
		return fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
			c.Database.Host, c.Database.Port, c.Database.User, c.Database.Name)
	}
	if c.Upload.MaxSize <= 0 || c.Upload.LargeFileThreshold <= 0 {
		return fmt.Errorf("upload limits must be positive: max=%d, threshold=%d", c.Upload.MaxSize, c.Upload.LargeFileThreshold)
	}
	if c.Upload.LargeFileThreshold > c.Upload.MaxSize {
		return fmt.Errorf("large file threshold %d exceeds max upload size %d", c.Upload.LargeFileThreshold, c.Upload.MaxSize)
	}
	if c.Cache.DownloadURLSize <= 0 {
		return fmt.Errorf("download URL cache size must be positive")
	}
	// кэш не должен отдавать ссылки, срок которых уже истек
	if c.Cache.DownloadURLTTL <= 0 || c.Cache.DownloadURLTTL >= domain.DownloadURLTTL {
		return fmt.Errorf("download URL cache TTL %v must be positive and below link lifetime %v", c.Cache.DownloadURLTTL, domain.DownloadURLTTL)
	}
	return nil
}

func splitList(items []string) []string {
	var result []string
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			result = append(result, part)
		}
	}
	return result
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

// GetURL - адрес в формате, который понимает golang-migrate
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}
