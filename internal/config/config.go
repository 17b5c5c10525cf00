/**
 * @description
 * This package handles configuration management for the service. It uses the
 * Viper library to read configuration from environment variables (with an
 * optional .env file), providing a centralized way to manage application
 * settings with sensible defaults.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration loading and binding.
 */

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the core service.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	AdminAPISecret           string `mapstructure:"ADMIN_API_SECRET"`
	CollectionCronSpec       string `mapstructure:"COLLECTION_CRON_SPEC"`
	CollectionRunAt          string `mapstructure:"COLLECTION_RUN_AT"`
	AdjustRateLimitPerMinute int    `mapstructure:"ADJUST_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("COLLECTION_CRON_SPEC", "0 6 * * *") // Daily at 06:00.
	viper.SetDefault("COLLECTION_RUN_AT", "06:00")
	viper.SetDefault("ADJUST_RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "core:rate_limit")

	// Bind environment variables explicitly so they appear in Unmarshal even
	// without a .env file present.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("ADMIN_API_SECRET")
	_ = viper.BindEnv("COLLECTION_CRON_SPEC")
	_ = viper.BindEnv("COLLECTION_RUN_AT")
	_ = viper.BindEnv("ADJUST_RATE_LIMIT_PER_MINUTE")

	// The .env file is optional; environment variables alone are fine.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, err
		}
	}

	err = viper.Unmarshal(&config)
	return config, err
}
