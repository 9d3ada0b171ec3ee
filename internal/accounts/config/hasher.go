package config

import (
	"fmt"

	"goaccounts/internal/accounts/domain/services"
)

// HasherConfig содержит настройки хэширования паролей.
type HasherConfig struct {
	Algorithm         string `yaml:"algorithm" env:"ACCOUNTS_HASHER_ALGORITHM" env-default:"argon2id"`
	BCryptCost        int    `yaml:"bcrypt_cost" env:"ACCOUNTS_HASHER_BCRYPT_COST" env-default:"10"`
	Argon2Memory      uint32 `yaml:"argon2_memory" env:"ACCOUNTS_HASHER_ARGON2_MEMORY" env-default:"65536"`
	Argon2Iterations  uint32 `yaml:"argon2_iterations" env:"ACCOUNTS_HASHER_ARGON2_ITERATIONS" env-default:"3"`
	Argon2Parallelism uint8  `yaml:"argon2_parallelism" env:"ACCOUNTS_HASHER_ARGON2_PARALLELISM" env-default:"4"`
}

// Argon2Params возвращает параметры argon2id.
func (h *HasherConfig) Argon2Params() services.Argon2Params {
	params := services.DefaultArgon2Params()
	params.Memory = h.Argon2Memory
	params.Iterations = h.Argon2Iterations
	params.Parallelism = h.Argon2Parallelism
	return params
}

func (h *HasherConfig) validate() error {
	switch h.Algorithm {
	case services.AlgorithmArgon2id, services.AlgorithmBcrypt:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHasher, h.Algorithm)
	}
}
