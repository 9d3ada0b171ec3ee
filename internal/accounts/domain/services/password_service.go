package services

import "errors"

// Ошибки хэширования паролей.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidHash     = errors.New("invalid password hash")
	ErrUnsupportedHash = errors.New("unsupported password hash algorithm")
)

// Поддерживаемые алгоритмы хэширования.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Argon2Params - параметры argon2id.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params совпадают с параметрами по умолчанию распространенных библиотек argon2.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}
