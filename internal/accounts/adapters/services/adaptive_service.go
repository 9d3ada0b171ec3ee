package services

import (
	"context"

	"goaccounts/internal/accounts/domain/services"
	svc "goaccounts/internal/accounts/ports/services"
)

// AdaptivePasswordService хэширует выбранным алгоритмом, а проверяет
// алгоритмом, определенным по префиксу хэша.
type AdaptivePasswordService struct {
	primary svc.PasswordService
	argon2  svc.PasswordService
	bcrypt  svc.PasswordService
}

// NewAdaptive создает сервис. algorithm - services.AlgorithmArgon2id или services.AlgorithmBcrypt.
func NewAdaptive(algorithm string, argon2 services.Argon2Params, bcryptCost int) (svc.PasswordService, error) {
	a := &AdaptivePasswordService{
		argon2: NewArgon2(argon2),
		bcrypt: NewBcrypt(bcryptCost),
	}

	switch algorithm {
	case services.AlgorithmArgon2id, "":
		a.primary = a.argon2
	case services.AlgorithmBcrypt:
		a.primary = a.bcrypt
	default:
		return nil, services.ErrUnsupportedHash
	}

	return a, nil
}

// Hash хэширует пароль основным алгоритмом.
func (a *AdaptivePasswordService) Hash(ctx context.Context, password string) (string, error) {
	return a.primary.Hash(ctx, password)
}

// Verify выбирает алгоритм по формату хэша.
func (a *AdaptivePasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	switch {
	case isArgon2Hash(hash):
		return a.argon2.Verify(ctx, password, hash)
	case isBcryptHash(hash):
		return a.bcrypt.Verify(ctx, password, hash)
	default:
		return false, services.ErrUnsupportedHash
	}
}
