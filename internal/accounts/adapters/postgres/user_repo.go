package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/ports/repositories"
	"goaccounts/pkg/logger"
)

// SQLSTATE и имена ограничений уникальности таблицы users.
const (
	codeUniqueViolation      = "23505"
	constraintUsernameUnique = "users_username_key"
	constraintEmailUnique    = "users_email_key"
)

const (
	queryInsertUser = `
        INSERT INTO users (username, email, password, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, username, email, password, created_at, updated_at
    `
	querySelectByID = `
        SELECT id, username, email, password, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	querySelectByUsername = `
        SELECT id, username, email, password, created_at, updated_at
        FROM users
        WHERE username = $1
    `
	querySelectByEmail = `
        SELECT id, username, email, password, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	queryUpdateUser = `
        UPDATE users
        SET username = $2, email = $3, password = $4, updated_at = $5
        WHERE id = $1
        RETURNING id, username, email, password, created_at, updated_at
    `
	queryDeleteUser = `
        DELETE FROM users
        WHERE id = $1
    `
)

// PgxPoolInterface - подмножество pgxpool.Pool, используемое репозиторием.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// UserRepository реализует repositories.UserRepository поверх Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

// Create вставляет пользователя. Уникальность username и email обеспечивают индексы БД,
// нарушение переводится в entities.ErrUsernameTaken / entities.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	created, err := scanUser(r.pool.QueryRow(ctx, queryInsertUser,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		if dupErr := uniqueViolation(err); dupErr != nil {
			log.Debug(ctx, "unique constraint violated", zap.Error(err))
			return nil, fmt.Errorf("error creating user: %w", dupErr)
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "FindByID", querySelectByID, id)
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "FindByUsername", querySelectByUsername, username)
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "FindByEmail", querySelectByEmail, email)
}

// Update сохраняет изменяемые поля и обновляет updated_at.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Update"))

	updated, err := scanUser(r.pool.QueryRow(ctx, queryUpdateUser,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found for update", zap.String("id", user.ID))
			return nil, entities.ErrUserNotFound
		}
		if dupErr := uniqueViolation(err); dupErr != nil {
			return nil, fmt.Errorf("error updating user: %w", dupErr)
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return updated, nil
}

// Delete удаляет пользователя по ID.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Delete"))

	result, err := r.pool.Exec(ctx, queryDeleteUser, id)
	if err != nil {
		log.Error(ctx, "error deleting user", zap.Error(err))
		return fmt.Errorf("error deleting user: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found for deletion", zap.String("id", id))
		return entities.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) findOne(ctx context.Context, method, query, arg string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found")
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error querying user", zap.Error(err))
		return nil, fmt.Errorf("error querying user (%s): %w", method, err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// uniqueViolation возвращает доменную ошибку для 23505 или nil.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case constraintUsernameUnique:
		return entities.ErrUsernameTaken
	case constraintEmailUnique:
		return entities.ErrEmailTaken
	default:
		return entities.ErrUserAlreadyExists
	}
}
