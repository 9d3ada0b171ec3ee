package config

import (
	"time"

	"goaccounts/pkg/retry"
)

// StartupConfig задает повторы подключения к Postgres и Redis при старте.
type StartupConfig struct {
	Attempts       int           `yaml:"attempts" env:"ACCOUNTS_STARTUP_ATTEMPTS" env-default:"5"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"ACCOUNTS_STARTUP_INITIAL_BACKOFF" env-default:"500ms"`
	MaxBackoff     time.Duration `yaml:"max_backoff" env:"ACCOUNTS_STARTUP_MAX_BACKOFF" env-default:"5s"`
}

// Policy возвращает политику повторов.
func (s *StartupConfig) Policy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Attempts = s.Attempts
	p.InitialBackoff = s.InitialBackoff
	p.MaxBackoff = s.MaxBackoff
	return p
}
