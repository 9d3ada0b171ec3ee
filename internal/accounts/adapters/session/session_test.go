package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaccounts/internal/accounts/adapters/session"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/repositories"
)

func newStore(t *testing.T) (*miniredis.Miniredis, repositories.SessionRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, session.NewRedisStore(client, "")
}

func TestRedisStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	mr, store := newStore(t)

	err := store.Save(ctx, "abc", &services.SessionData{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	assert.True(t, mr.Exists("sess:abc"))
	assert.Equal(t, "user-1", mr.HGet("sess:abc", "userId"))
	assert.Equal(t, time.Hour, mr.TTL("sess:abc"))

	data, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", data.UserID)
}

func TestRedisStore_LoadMissing(t *testing.T) {
	_, store := newStore(t)

	data, err := store.Load(context.Background(), "missing")

	assert.Nil(t, data)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, store := newStore(t)

	require.NoError(t, store.Save(ctx, "abc", &services.SessionData{UserID: "user-1"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestRedisStore_Destroy(t *testing.T) {
	ctx := context.Background()
	mr, store := newStore(t)

	require.NoError(t, store.Save(ctx, "abc", &services.SessionData{UserID: "user-1"}, time.Hour))
	require.NoError(t, store.Destroy(ctx, "abc"))
	assert.False(t, mr.Exists("sess:abc"))

	require.NoError(t, store.Destroy(ctx, "never-existed"))
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, "accounts:")
	require.NoError(t, store.Save(context.Background(), "abc", &services.SessionData{UserID: "u"}, 0))

	assert.True(t, mr.Exists("accounts:abc"))
	assert.Equal(t, time.Duration(0), mr.TTL("accounts:abc"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, store := newStore(t)
	mr.Close()

	_, err := store.Load(ctx, "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrSessionNotFound)

	require.Error(t, store.Save(ctx, "abc", &services.SessionData{UserID: "u"}, time.Hour))
	require.Error(t, store.Destroy(ctx, "abc"))
	require.Error(t, store.Ping(ctx))
}

type stubStore struct {
	repositories.SessionRepository
	destroyed []string
	err       error
}

func (s *stubStore) Destroy(_ context.Context, id string) error {
	s.destroyed = append(s.destroyed, id)
	return s.err
}

func TestSession_Lifecycle(t *testing.T) {
	store := &stubStore{}

	s := session.New(store)
	assert.NotEmpty(t, s.ID())
	assert.True(t, s.IsNew())
	assert.False(t, s.Modified())

	_, ok := s.UserID()
	assert.False(t, ok)

	s.SetUserID("user-1")
	userID, ok := s.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
	assert.True(t, s.Modified())

	require.NoError(t, s.Destroy(context.Background()))
	assert.Equal(t, []string{s.ID()}, store.destroyed)
	assert.True(t, s.Destroyed())
	assert.False(t, s.Modified())
	_, ok = s.UserID()
	assert.False(t, ok)
}

func TestSession_Restore(t *testing.T) {
	s := session.Restore("abc", &services.SessionData{UserID: "user-1"}, &stubStore{})

	assert.Equal(t, "abc", s.ID())
	assert.False(t, s.IsNew())
	assert.False(t, s.Modified())

	userID, ok := s.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "user-1", s.Data().UserID)
}

func TestSession_DestroyError(t *testing.T) {
	store := &stubStore{err: errors.New("redis down")}
	s := session.Restore("abc", &services.SessionData{UserID: "user-1"}, store)

	err := s.Destroy(context.Background())

	require.Error(t, err)
	assert.True(t, s.Destroyed())
	_, ok := s.UserID()
	assert.False(t, ok)
}
