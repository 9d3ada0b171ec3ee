// Package config содержит конфигурацию сервиса учетных записей.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"goaccounts/pkg/logger"
)

// DefaultEnvFile - необязательный файл с переменными окружения.
const DefaultEnvFile = ".env"

// Константы ошибок и сообщений для конфигурации.
const (
	LogLoadingConfig    = "Loading accounts service configuration"
	LogConfigLoaded     = "Configuration loaded successfully"
	LogEnvFileLoaded    = "Environment file loaded"
	ErrFailedLoadConfig = "Failed to load configuration"
	ErrFailedLoadEnv    = "Failed to load environment file"
	ErrInvalidConfig    = "Invalid configuration"
)

// Config представляет полную конфигурацию приложения.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Session  SessionConfig  `yaml:"session"`
	Hasher   HasherConfig   `yaml:"hasher"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Startup  StartupConfig  `yaml:"startup"`
}

// Load загружает конфигурацию из переменных окружения. Если envFile существует,
// его значения подставляются для переменных, не заданных в окружении.
func Load(ctx context.Context, envFile string) (*Config, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogLoadingConfig)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Error(ctx, ErrFailedLoadEnv, zap.String("file", envFile), zap.Error(err))
				return nil, fmt.Errorf("%s: %w", ErrFailedLoadEnv, err)
			}
		} else {
			log.Info(ctx, LogEnvFileLoaded, zap.String("file", envFile))
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrInvalidConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrInvalidConfig, err)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("grpc_address", cfg.GRPC.GetAddress()),
		zap.String("session_cookie", cfg.Session.CookieName),
		zap.Duration("session_max_age", cfg.Session.MaxAge),
		zap.String("hasher", cfg.Hasher.Algorithm),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return &cfg, nil
}

// Validate проверяет значения, которые нельзя выразить через env-default.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return ErrEmptySessionSecret
	}
	if c.Session.CookieName == "" {
		return ErrEmptyCookieName
	}
	if c.Postgres.MinConn > c.Postgres.MaxConn {
		return ErrPoolBounds
	}
	return c.Hasher.validate()
}

// Ошибки валидации конфигурации.
var (
	ErrEmptySessionSecret = errors.New("session secret must not be empty")
	ErrEmptyCookieName    = errors.New("session cookie name must not be empty")
	ErrPoolBounds         = errors.New("postgres min_conn exceeds max_conn")
	ErrUnknownHasher      = errors.New("unknown hasher algorithm")
)
