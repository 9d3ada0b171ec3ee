package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"goaccounts/internal/accounts/adapters/health"
	accounthttp "goaccounts/internal/accounts/adapters/http"
	"goaccounts/internal/accounts/adapters/http/middleware"
	"goaccounts/internal/accounts/adapters/services"
	"goaccounts/internal/accounts/adapters/session"
	"goaccounts/internal/accounts/app"
	"goaccounts/internal/accounts/domain/entities"
	domain "goaccounts/internal/accounts/domain/services"
)

const cookieName = "qid"

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*entities.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, entities.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return nil, entities.ErrEmailTaken
		}
	}

	created := *user
	created.ID = uuid.NewString()
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *memoryUsers) find(match func(*entities.User) bool) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*entities.User, error) {
	return m.find(func(u *entities.User) bool { return u.ID == id })
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	return m.find(func(u *entities.User) bool { return u.Username == username })
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	return m.find(func(u *entities.User) bool { return u.Email == email })
}

func (m *memoryUsers) Update(_ context.Context, user *entities.User) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return nil, entities.ErrUserNotFound
	}
	updated := *user
	m.users[user.ID] = &updated
	return &updated, nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type testEnv struct {
	app   *fiber.App
	redis *miniredis.Miniredis
	users *memoryUsers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	users := newMemoryUsers()
	store := session.NewRedisStore(client, "")
	cookie := domain.SessionCookie{Name: cookieName, MaxAge: time.Hour, SameSite: fiber.CookieSameSiteLaxMode, Path: "/"}

	useCase := app.NewAccountUseCase(users, services.NewBcrypt(bcrypt.MinCost), cookieName)

	checker := health.NewChecker(time.Second).
		Register("users", health.PingFunc(func(context.Context) error { return nil })).
		Register("sessions", store)

	fiberApp := accounthttp.NewApp(fiber.Config{}, accounthttp.RouterDeps{
		Accounts: useCase,
		Session: middleware.SessionConfig{
			Store:  store,
			Signer: services.NewCookieSigner("test-secret", "goaccounts", time.Hour),
			Cookie: cookie,
		},
		Health: checker,
	})

	return &testEnv{app: fiberApp, redis: mr, users: users}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := e.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func registerBody(username, email, password string) map[string]any {
	return map[string]any{"options": map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}}
}

func fieldErrors(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()

	raw, ok := body["errors"].([]any)
	require.True(t, ok, "response has no errors: %v", body)

	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		out = append(out, e.(map[string]any))
	}
	return out
}

func (e *testEnv) register(t *testing.T, username, email, password string) *http.Cookie {
	t.Helper()

	resp, body := e.do(t, http.MethodPost, "/api/v1/register", registerBody(username, email, password))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body["user"], "registration failed: %v", body)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	return cookie
}

func TestMe_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/me", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "user")
	assert.Nil(t, body["user"])
	assert.Nil(t, sessionCookie(resp))
	assert.Empty(t, env.redis.Keys())
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/register", registerBody("alice", "alice@example.com", "secret"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "errors")

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.NotEmpty(t, user["createdAt"])
	assert.Equal(t, user["createdAt"], user["updatedAt"])
	assert.NotContains(t, user, "password")

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	stored, err := env.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)

	require.Len(t, env.redis.Keys(), 1)

	_, me := env.do(t, http.MethodGet, "/api/v1/me", nil, cookie)
	require.NotNil(t, me["user"])
	assert.Equal(t, user["id"], me["user"].(map[string]any)["id"])
}

func TestRegister_LongPassword(t *testing.T) {
	env := newTestEnv(t)
	password := strings.Repeat("x", 100)

	env.register(t, "alice", "alice@example.com", password)

	resp, body := env.do(t, http.MethodPost, "/api/v1/login", map[string]string{"usernameOrEmail": "alice", "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])

	_, body = env.do(t, http.MethodPost, "/api/v1/login", map[string]string{"usernameOrEmail": "alice", "password": password[:72]})
	errs := fieldErrors(t, body)
	require.Len(t, errs, 1)
	assert.Equal(t, "incorrect password", errs[0]["message"])
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/register", registerBody("a@", "bad", "pw"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "user")

	errs := fieldErrors(t, body)
	require.Len(t, errs, 3)
	assert.Equal(t, "email", errs[0]["field"])
	assert.Equal(t, "invalid email", errs[0]["message"])
	assert.Equal(t, "username", errs[1]["field"])
	assert.Equal(t, "length must be greater than 2", errs[1]["message"])
	assert.Equal(t, "password", errs[2]["field"])

	assert.Nil(t, sessionCookie(resp))
	assert.Empty(t, env.redis.Keys())
	assert.Empty(t, env.users.users)
}

func TestRegister_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@example.com", "secret")

	t.Run("username", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/register", registerBody("alice", "other@example.com", "secret"))

		errs := fieldErrors(t, body)
		require.Len(t, errs, 1)
		assert.Equal(t, "username", errs[0]["field"])
		assert.Equal(t, "username already taken", errs[0]["message"])
		assert.Nil(t, sessionCookie(resp))
	})

	t.Run("email", func(t *testing.T) {
		_, body := env.do(t, http.MethodPost, "/api/v1/register", registerBody("bob", "alice@example.com", "secret"))

		errs := fieldErrors(t, body)
		require.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0]["field"])
		assert.Equal(t, "email already taken", errs[0]["message"])
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@example.com", "secret")

	t.Run("by username", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/login", map[string]string{"usernameOrEmail": "alice", "password": "secret"})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
		require.NotNil(t, sessionCookie(resp))
	})

	t.Run("by email", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/login", map[string]string{"usernameOrEmail": "alice@example.com", "password": "secret"})

		assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
		cookie := sessionCookie(resp)
		require.NotNil(t, cookie)

		_, me := env.do(t, http.MethodGet, "/api/v1/me", nil, cookie)
		assert.Equal(t, "alice", me["user"].(map[string]any)["username"])
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/login", map[string]string{"usernameOrEmail": "nobody", "password": "secret"})

		errs := fieldErrors(t, body)
		require.Len(t, errs, 1)
		assert.Equal(t, "username", errs[0]["field"])
		assert.Equal(t, "username does not exist", errs[0]["message"])
		assert.Nil(t, sessionCookie(resp))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPost, "/api/v1/login", map[string]string{"usernameOrEmail": "alice", "password": "nope"})

		errs := fieldErrors(t, body)
		require.Len(t, errs, 1)
		assert.Equal(t, "password", errs[0]["field"])
		assert.Equal(t, "incorrect password", errs[0]["message"])
		assert.Nil(t, sessionCookie(resp))
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@example.com", "secret")
	require.Len(t, env.redis.Keys(), 1)

	resp, body := env.do(t, http.MethodPost, "/api/v1/logout", nil, cookie)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["logout"])
	assert.Empty(t, env.redis.Keys())

	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	_, me := env.do(t, http.MethodGet, "/api/v1/me", nil, cookie)
	assert.Nil(t, me["user"])
}

func TestLogout_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/v1/logout", nil)

	assert.Equal(t, true, body["logout"])
}

func TestLogout_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.redis.Close()

	resp, body := env.do(t, http.MethodPost, "/api/v1/logout", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["logout"])
	require.NotNil(t, sessionCookie(resp))
}

func TestSession_TamperedCookie(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@example.com", "secret")

	tampered := &http.Cookie{Name: cookieName, Value: cookie.Value + "x"}
	_, body := env.do(t, http.MethodGet, "/api/v1/me", nil, tampered)

	assert.Nil(t, body["user"])
}

func TestSession_CookieCarriesSignedID(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@example.com", "secret")

	keys := env.redis.Keys()
	require.Len(t, keys, 1)

	sessionID, err := services.NewCookieSigner("test-secret", "goaccounts", time.Hour).Verify(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "sess:"+sessionID, keys[0])
	assert.NotContains(t, cookie.Value, sessionID)

	forged := &http.Cookie{Name: cookieName, Value: sessionID}
	resp, body := env.do(t, http.MethodGet, "/api/v1/me", nil, forged)
	assert.Nil(t, body["user"])
	assert.Nil(t, sessionCookie(resp))
	assert.Len(t, env.redis.Keys(), 1)
}

func TestSession_ReadOnlyRequestsDoNotRewrite(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@example.com", "secret")
	key := env.redis.Keys()[0]

	env.redis.FastForward(30 * time.Minute)
	ttl := env.redis.TTL(key)

	resp, body := env.do(t, http.MethodGet, "/api/v1/me", nil, cookie)

	require.NotNil(t, body["user"])
	assert.Nil(t, sessionCookie(resp))
	assert.Equal(t, ttl, env.redis.TTL(key))
}

func TestSession_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register(t, "alice", "alice@example.com", "secret")

	stored, err := env.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, env.users.Delete(context.Background(), stored.ID))

	resp, body := env.do(t, http.MethodGet, "/api/v1/me", nil, cookie)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["user"])
}

func TestMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/register", "/api/v1/login"} {
		resp, body := env.do(t, http.MethodPost, path, "{not json")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, "invalid request", body["error"])
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/nope", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", body["error"])
}

func TestSessionStoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.redis.Close()

	resp, body := env.do(t, http.MethodPost, "/api/v1/register", registerBody("alice", "alice@example.com", "secret"))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Nil(t, sessionCookie(resp))
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["healthy"])

	env.redis.Close()

	resp, body = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, false, body["healthy"])
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")

	resp, err := env.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))

	resp2, _ := env.do(t, http.MethodGet, "/api/v1/me", nil)
	assert.NotEmpty(t, resp2.Header.Get(middleware.HeaderRequestID))
}
