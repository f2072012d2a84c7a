package auth

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Secret - общий ключ для HS256; используется, если JWKSURL пуст
	Secret  string        `mapstructure:"Secret"`
	JWKSURL string        `mapstructure:"JWKSURL"`
	Issuer  string        `mapstructure:"Issuer"`
	Leeway  time.Duration `mapstructure:"Leeway"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("Leeway", 30*time.Second)

	v.BindEnv("Secret", "AUTH_JWT_SECRET")
	v.BindEnv("JWKSURL", "AUTH_JWKS_URL")
	v.BindEnv("Issuer", "AUTH_ISSUER")
	v.BindEnv("Leeway", "AUTH_LEEWAY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: auth config %s not read, using environment: %v\n", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}
	if cfg.Secret == "" && cfg.JWKSURL == "" {
		return nil, fmt.Errorf("either Secret or JWKSURL is required")
	}

	return &cfg, nil
}
