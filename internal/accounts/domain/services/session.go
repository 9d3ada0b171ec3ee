package services

import (
	"errors"
	"time"
)

// Ошибки сессий.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrSigningSession      = errors.New("failed to sign session token")
)

// SessionData - содержимое серверной сессии.
type SessionData struct {
	UserID string
}

// SessionCookie описывает параметры cookie сессии.
type SessionCookie struct {
	Name     string
	MaxAge   time.Duration
	Secure   bool
	SameSite string
	Domain   string
	Path     string
}
