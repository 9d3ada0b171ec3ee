package services

import "context"

// Session - серверная сессия текущего запроса.
type Session interface {
	ID() string

	UserID() (string, bool)

	SetUserID(userID string)

	Destroy(ctx context.Context) error
}

// CookieClearer позволяет транспорту удалить cookie по имени.
type CookieClearer interface {
	ClearCookie(name string)
}

// CookieSigner подписывает идентификатор сессии для cookie и проверяет подпись.
type CookieSigner interface {
	Sign(ctx context.Context, sessionID string) (string, error)

	Verify(ctx context.Context, token string) (string, error)
}
