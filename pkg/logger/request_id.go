package logger

import (
	"context"

	"github.com/google/uuid"
)

// MaxRequestIDLength - предельная длина принимаемого от клиента идентификатора.
const MaxRequestIDLength = 64

type requestIDKey struct{}

// NewRequestIDContext кладет requestID в контекст. Пустой идентификатор или идентификатор,
// пришедший от клиента в неподходящем виде, заменяется сгенерированным.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	if !acceptableRequestID(requestID) {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID извлекает идентификатор запроса.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// GenerateRequestID возвращает UUIDv7: такие идентификаторы упорядочены по времени в логах.
func GenerateRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// acceptableRequestID пропускает только короткие идентификаторы из [A-Za-z0-9._-],
// чтобы заголовок клиента не попадал в логи как есть.
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
