package repositories

import (
	"context"
	"time"

	"goaccounts/internal/accounts/domain/services"
)

// SessionRepository хранит данные серверных сессий по их идентификатору.
type SessionRepository interface {
	Load(ctx context.Context, id string) (*services.SessionData, error)

	Save(ctx context.Context, id string, data *services.SessionData, ttl time.Duration) error

	Destroy(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}
