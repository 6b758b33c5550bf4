package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/nametracker/nametracker/internal/logger"
	"github.com/nametracker/nametracker/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
	DatabaseConfig  *DatabaseConfig
	RedisConfig     *RedisConfig
	DynadotConfig   *DynadotConfig
	LifecycleConfig *LifecycleConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
		DatabaseConfig:  &DatabaseConfig{},
		RedisConfig:     &RedisConfig{},
		DynadotConfig:   &DynadotConfig{},
		LifecycleConfig: &LifecycleConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading nametracker config: %v", err)
	}

	return config, nil
}
