package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"goaccounts/internal/accounts/domain/services"
	svc "goaccounts/internal/accounts/ports/services"
)

const (
	argon2Prefix = "$argon2id$"

	errMsgGeneratingSalt = "failed to generate salt"
	errMsgDecodingHash   = "failed to decode argon2id hash"
)

// ServiceArgon2 реализует PasswordService на argon2id.
// Хэш хранится в формате $argon2id$v=19$m=<KiB>,t=<iter>,p=<par>$<salt>$<key>.
type ServiceArgon2 struct {
	params services.Argon2Params
}

// NewArgon2 создает сервис argon2id. Нулевые параметры заменяются значениями по умолчанию.
func NewArgon2(params services.Argon2Params) svc.PasswordService {
	def := services.DefaultArgon2Params()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	return &ServiceArgon2{params: params}
}

// Hash хэширует пароль со случайной солью.
func (s *ServiceArgon2) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	salt := make([]byte, s.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w: %w", errMsgGeneratingSalt, services.ErrHashingFailed, err)
	}

	key := argon2.IDKey([]byte(password), salt, s.params.Iterations, s.params.Memory, s.params.Parallelism, s.params.KeyLength)

	return encodeArgon2(s.params, salt, key), nil
}

// Verify пересчитывает ключ с параметрами из хэша и сравнивает за постоянное время.
func (s *ServiceArgon2) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	params, salt, key, err := decodeArgon2(hash)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errMsgDecodingHash, err)
	}

	other := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func encodeArgon2(p services.Argon2Params, salt, key []byte) string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeArgon2(hash string) (services.Argon2Params, []byte, []byte, error) {
	var p services.Argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != services.AlgorithmArgon2id {
		return p, nil, nil, services.ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %w", services.ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: version %d", services.ErrUnsupportedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %w", services.ErrInvalidHash, err)
	}
	// argon2.IDKey паникует при нулевом числе проходов или потоков.
	if p.Iterations == 0 || p.Parallelism == 0 {
		return p, nil, nil, fmt.Errorf("%w: zero iterations or parallelism", services.ErrInvalidHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: %w", services.ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: bad key encoding", services.ErrInvalidHash)
	}

	//nolint:gosec
	p.SaltLength = uint32(len(salt))
	//nolint:gosec
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

func isArgon2Hash(hash string) bool {
	return strings.HasPrefix(hash, argon2Prefix)
}
