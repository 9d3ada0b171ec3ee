package config

import (
	"time"

	"goaccounts/internal/accounts/domain/services"
)

// SessionConfig содержит настройки cookie и хранения сессий.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env:"ACCOUNTS_SESSION_COOKIE_NAME" env-default:"qid"`
	Secret     string        `yaml:"secret" env:"ACCOUNTS_SESSION_SECRET" env-required:"true"`
	Issuer     string        `yaml:"issuer" env:"ACCOUNTS_SESSION_ISSUER" env-default:"goaccounts"`
	MaxAge     time.Duration `yaml:"max_age" env:"ACCOUNTS_SESSION_MAX_AGE" env-default:"87600h"`
	Secure     bool          `yaml:"secure" env:"ACCOUNTS_SESSION_SECURE" env-default:"false"`
	SameSite   string        `yaml:"same_site" env:"ACCOUNTS_SESSION_SAME_SITE" env-default:"lax"`
	Domain     string        `yaml:"domain" env:"ACCOUNTS_SESSION_DOMAIN" env-default:""`
	KeyPrefix  string        `yaml:"key_prefix" env:"ACCOUNTS_SESSION_KEY_PREFIX" env-default:"sess:"`
}

// Cookie возвращает параметры cookie сессии.
func (s *SessionConfig) Cookie() services.SessionCookie {
	return services.SessionCookie{
		Name:     s.CookieName,
		MaxAge:   s.MaxAge,
		Secure:   s.Secure,
		SameSite: s.SameSite,
		Domain:   s.Domain,
		Path:     "/",
	}
}
