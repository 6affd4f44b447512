package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Values come from config.yaml
// when present, overridden by FOODMARKET_* environment variables.
type Config struct {
	Server struct {
		Port    string `mapstructure:"port"`
		GinMode string `mapstructure:"gin_mode"`
	} `mapstructure:"server"`

	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	JWT struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"jwt"`

	Checkout struct {
		SecretKey     string `mapstructure:"secret_key"`
		WebhookSecret string `mapstructure:"webhook_secret"`
		SuccessURL    string `mapstructure:"success_url"`
		CancelURL     string `mapstructure:"cancel_url"`
	} `mapstructure:"checkout"`

	// Platform.FeeRate is the single source of truth for the marketplace fee
	// split; analytics and revenue computations must not re-declare it.
	Platform struct {
		FeeRate float64 `mapstructure:"fee_rate"`
	} `mapstructure:"platform"`

	Analytics struct {
		// RevenueScope decides which orders count toward revenue series:
		// "delivered" (only delivered orders) or "all".
		RevenueScope string `mapstructure:"revenue_scope"`
	} `mapstructure:"analytics"`

	Storage struct {
		Region string `mapstructure:"region"`
		Bucket string `mapstructure:"bucket"`
	} `mapstructure:"storage"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FOODMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("platform.fee_rate", 0.05)
	v.SetDefault("analytics.revenue_scope", "delivered")
	v.SetDefault("checkout.success_url", "http://localhost:3000/payment-success")
	v.SetDefault("checkout.cancel_url", "http://localhost:3000/payment-cancel")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Analytics.RevenueScope != "delivered" && cfg.Analytics.RevenueScope != "all" {
		return nil, fmt.Errorf("analytics.revenue_scope must be \"delivered\" or \"all\", got %q",
			cfg.Analytics.RevenueScope)
	}
	if cfg.Platform.FeeRate < 0 || cfg.Platform.FeeRate >= 1 {
		return nil, fmt.Errorf("platform.fee_rate must be in [0, 1), got %v", cfg.Platform.FeeRate)
	}

	return &cfg, nil
}
