package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/adapters/session"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/repositories"
	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"
)

// Константы для логирования.
const (
	LogSessionRestored = "session restored"
	LogSessionRejected = "session cookie rejected, starting anonymous session"
	LogSessionSaved    = "session saved"

	ErrorLoadSession = "failed to load session"
	ErrorSaveSession = "failed to save session"
	ErrorSignSession = "failed to sign session cookie"
	ErrorNoSession   = "session middleware is not installed"
)

type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

// SessionConfig - зависимости промежуточного ПО сессий.
type SessionConfig struct {
	Store  repositories.SessionRepository
	Signer svc.CookieSigner
	Cookie services.SessionCookie
}

// NewSessionMiddleware восстанавливает сессию по подписанной cookie до обработчика
// и сохраняет ее после, если обработчик ее изменил. Анонимные сессии не сохраняются.
func NewSessionMiddleware(cfg SessionConfig) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "session"))

		sess, err := loadSession(requestCtx, cfg, ctx.Cookies(cfg.Cookie.Name))
		if err != nil {
			log.Error(requestCtx, ErrorLoadSession, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorLoadSession, err)
		}
		ctx.Locals(sessionKey, sess)

		if err := ctx.Next(); err != nil {
			return err
		}

		if sess.Destroyed() || !sess.Modified() {
			return nil
		}

		if err := cfg.Store.Save(requestCtx, sess.ID(), sess.Data(), cfg.Cookie.MaxAge); err != nil {
			log.Error(requestCtx, ErrorSaveSession, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorSaveSession, err)
		}

		token, err := cfg.Signer.Sign(requestCtx, sess.ID())
		if err != nil {
			log.Error(requestCtx, ErrorSignSession, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorSignSession, err)
		}

		ctx.Cookie(newCookie(cfg.Cookie, token, time.Now()))
		log.Debug(requestCtx, LogSessionSaved, zap.String("sessionID", sess.ID()))

		return nil
	}
}

func loadSession(ctx context.Context, cfg SessionConfig, token string) (*session.Session, error) {
	if token == "" {
		return session.New(cfg.Store), nil
	}

	log := logger.Log(ctx)

	sessionID, err := cfg.Signer.Verify(ctx, token)
	if err != nil {
		log.Debug(ctx, LogSessionRejected, zap.Error(err))
		return session.New(cfg.Store), nil
	}

	data, err := cfg.Store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return session.New(cfg.Store), nil
		}
		return nil, err
	}

	log.Debug(ctx, LogSessionRestored, zap.String("sessionID", sessionID))
	return session.Restore(sessionID, data, cfg.Store), nil
}

func newCookie(cfg services.SessionCookie, value string, now time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
		HTTPOnly: true,
	}
	if cfg.MaxAge > 0 {
		cookie.MaxAge = int(cfg.MaxAge / time.Second)
		cookie.Expires = now.Add(cfg.MaxAge)
	} else {
		cookie.SessionOnly = true
	}
	return cookie
}

// SessionFrom возвращает сессию запроса, восстановленную NewSessionMiddleware.
func SessionFrom(ctx fiber.Ctx) (svc.Session, error) {
	sess, ok := ctx.Locals(sessionKey).(*session.Session)
	if !ok || sess == nil {
		return nil, errors.New(ErrorNoSession)
	}
	return sess, nil
}

// CookieJar очищает cookie сессии с теми же атрибутами, с которыми она выдавалась.
type CookieJar struct {
	ctx    fiber.Ctx
	cookie services.SessionCookie
}

// NewCookieJar создает адаптер svc.CookieClearer поверх ответа fiber.
func NewCookieJar(ctx fiber.Ctx, cookie services.SessionCookie) svc.CookieClearer {
	return &CookieJar{ctx: ctx, cookie: cookie}
}

// ClearCookie выставляет cookie name с истекшим сроком действия.
func (j *CookieJar) ClearCookie(name string) {
	j.ctx.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     j.cookie.Path,
		Domain:   j.cookie.Domain,
		Secure:   j.cookie.Secure,
		SameSite: j.cookie.SameSite,
		HTTPOnly: true,
		Expires:  time.Unix(0, 0),
	})
}
