package main

import (
	"pricebook-backend/internal/config"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the worker
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RetentionDays int
	HealthPort    string
	Jobs          config.JobConfig
}

// loadConfig lấy phần cấu hình worker từ app config
func loadConfig(appCfg *config.Config) *Config {
	cfg := &Config{
		RedisAddr:     appCfg.Redis.Host,
		RedisPassword: appCfg.Redis.Password,
		RedisDB:       appCfg.Redis.DB,
		RetentionDays: appCfg.Import.ArchiveRetentionDays,
		HealthPort:    getEnv("WORKER_HEALTH_PORT", "9999"),
		Jobs:          appCfg.Jobs,
	}

	log.Info().
		Str("redis", cfg.RedisAddr).
		Int("retention_days", cfg.RetentionDays).
		Str("purge_cron", cfg.Jobs.PurgeArchivesCron).
		Msg("[Config] Worker configuration loaded")

	return cfg
}

func (c *Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
