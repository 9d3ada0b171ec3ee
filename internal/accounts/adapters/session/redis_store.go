// Package session содержит серверные сессии и их хранилище в Redis.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/repositories"
	"goaccounts/pkg/logger"
)

// DefaultKeyPrefix - префикс ключей сессий по умолчанию.
const DefaultKeyPrefix = "sess:"

const (
	fieldUserID = "userId"

	LogMethodLoad    = "load"
	LogMethodSave    = "save"
	LogMethodDestroy = "destroy"

	ErrorFailedToLoad    = "failed to load session from redis"
	ErrorFailedToSave    = "failed to save session in redis"
	ErrorFailedToDestroy = "failed to destroy session in redis"
	ErrorFailedToPing    = "redis session store is unavailable"
)

// RedisStore хранит сессию как хэш <prefix><id> с TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore создает хранилище сессий. Пустой prefix заменяется на DefaultKeyPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) repositories.SessionRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Load читает сессию. Отсутствующий или истекший ключ дает services.ErrSessionNotFound.
func (s *RedisStore) Load(ctx context.Context, id string) (*services.SessionData, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodLoad), zap.String("sessionID", id))

	values, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		log.Error(ctx, ErrorFailedToLoad, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToLoad, err)
	}
	if len(values) == 0 {
		return nil, services.ErrSessionNotFound
	}

	return &services.SessionData{UserID: values[fieldUserID]}, nil
}

// Save записывает сессию и продлевает ее TTL одной транзакцией.
func (s *RedisStore) Save(ctx context.Context, id string, data *services.SessionData, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSave), zap.String("sessionID", id))

	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldUserID, data.UserID)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToSave, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSave, err)
	}

	return nil
}

// Destroy удаляет сессию. Удаление несуществующей сессии не является ошибкой.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodDestroy), zap.String("sessionID", id))

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		log.Error(ctx, ErrorFailedToDestroy, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDestroy, err)
	}

	return nil
}

// Ping проверяет доступность Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToPing, err)
	}
	return nil
}
