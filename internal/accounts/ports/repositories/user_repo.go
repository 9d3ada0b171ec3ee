package repositories

import (
	"context"

	"goaccounts/internal/accounts/domain/entities"
)

// UserRepository определяет хранилище пользователей.
// Create обязан атомарно соблюдать уникальность username и email.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	Update(ctx context.Context, user *entities.User) (*entities.User, error)

	Delete(ctx context.Context, id string) error
}
