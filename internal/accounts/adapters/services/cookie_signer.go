package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/domain/services"
	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"
)

const (
	methodSign   = "SignSession"
	methodVerify = "VerifySession"

	msgEmptySecret       = "empty secret key provided"
	msgRejectedSignature = "session cookie rejected"
	//nolint:gosec
	errSigningToken = "error signing token"
)

// CookieSignerJWT подписывает идентификатор сессии как HS256 JWT (claim jti).
// Срок действия задается как у cookie; ttl == 0 отключает exp.
type CookieSignerJWT struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// NewCookieSigner создает подписывающий сервис.
func NewCookieSigner(secretKey, issuer string, ttl time.Duration) svc.CookieSigner {
	return &CookieSignerJWT{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Sign возвращает подписанное значение cookie для sessionID.
func (s *CookieSignerJWT) Sign(ctx context.Context, sessionID string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodSign))

	if len(s.secretKey) == 0 {
		log.Error(ctx, msgEmptySecret)
		return "", fmt.Errorf("%w: empty secret key", services.ErrSigningSession)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:       sessionID,
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", fmt.Errorf("%w: %w", services.ErrSigningSession, err)
	}

	return token, nil
}

// Verify проверяет подпись и срок действия и возвращает идентификатор сессии.
func (s *CookieSignerJWT) Verify(ctx context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		logger.Log(ctx).Debug(ctx, msgRejectedSignature, zap.String("method", methodVerify), zap.Error(err))
		return "", fmt.Errorf("%w: %w", services.ErrInvalidSessionToken, err)
	}

	if claims.ID == "" {
		return "", services.ErrInvalidSessionToken
	}

	return claims.ID, nil
}

// SetClockForTest подменяет источник времени.
func (s *CookieSignerJWT) SetClockForTest(now func() time.Time) {
	s.now = now
}
