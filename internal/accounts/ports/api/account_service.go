package api

import (
	"context"

	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/ports/services"
)

// AccountUseCase определяет основной порт операций с учетными записями.
// Ошибки валидации и аутентификации возвращаются в UserResponse, error - только сбои инфраструктуры.
type AccountUseCase interface {
	Me(ctx context.Context, session services.Session) (*entities.User, error)

	Register(ctx context.Context, input entities.RegisterInput, session services.Session) (*entities.UserResponse, error)

	Login(ctx context.Context, usernameOrEmail, password string, session services.Session) (*entities.UserResponse, error)

	Logout(ctx context.Context, session services.Session, cookies services.CookieClearer) bool
}
