package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	RelayMethod string `mapstructure:"RELAY_METHOD"`

	ScriptServerURL string `mapstructure:"SCRIPT_SERVER_URL"`
	ScriptDatabase  string `mapstructure:"SCRIPT_DATABASE"`
	ScriptName      string `mapstructure:"SCRIPT_NAME"`
	ScriptUsername  string `mapstructure:"SCRIPT_USERNAME"`
	ScriptPassword  string `mapstructure:"SCRIPT_PASSWORD"`

	// AuditBackend selects the audit store: sqlite, redis or none.
	// The pipeline runs correctly with auditing disabled.
	AuditBackend  string `mapstructure:"AUDIT_BACKEND"`
	AuditDBPath   string `mapstructure:"AUDIT_DB_PATH"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// LogToken gates the read-only /v1/logs endpoint
	LogToken     string `mapstructure:"LOG_TOKEN"`
	ChannelsFile string `mapstructure:"CHANNELS_FILE"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("RELAY_METHOD", "POST")
	viper.SetDefault("AUDIT_BACKEND", "sqlite")
	viper.SetDefault("AUDIT_DB_PATH", "webhook-relay.db")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CHANNELS_FILE", "")

	// A missing .env is fine: everything can come from the environment
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}

	config.RelayMethod = strings.ToUpper(config.RelayMethod)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings the relay cannot run without
func (c *Config) Validate() error {
	if c.ScriptServerURL == "" {
		return fmt.Errorf("SCRIPT_SERVER_URL is required")
	}
	switch c.AuditBackend {
	case "sqlite", "redis", "none":
	default:
		return fmt.Errorf("invalid AUDIT_BACKEND: %q (want sqlite, redis or none)", c.AuditBackend)
	}
	return nil
}
