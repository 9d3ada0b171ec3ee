// Package postgres содержит репозитории сервиса учетных записей на базе pgx.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"goaccounts/internal/accounts/ports/repositories"
)

// RepositoryFactory создает репозитории поверх общего пула.
type RepositoryFactory struct {
	userRepo repositories.UserRepository
}

// NewRepositoryFactory создает новую фабрику репозиториев.
func NewRepositoryFactory(pool *pgxpool.Pool) *RepositoryFactory {
	return &RepositoryFactory{
		userRepo: NewUserRepository(pool),
	}
}

// UserRepository возвращает репозиторий пользователей.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return f.userRepo
}
