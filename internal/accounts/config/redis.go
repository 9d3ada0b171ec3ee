package config

import (
	"strconv"
	"time"

	redisdb "goaccounts/pkg/db/redis"
)

// RedisConfig содержит настройки хранилища сессий.
type RedisConfig struct {
	Host         string        `yaml:"host" env:"ACCOUNTS_REDIS_HOST" env-default:"localhost"`
	Port         int           `yaml:"port" env:"ACCOUNTS_REDIS_PORT" env-default:"6379"`
	Password     string        `yaml:"password" env:"ACCOUNTS_REDIS_PASSWORD" env-default:""`
	DB           int           `yaml:"db" env:"ACCOUNTS_REDIS_DB" env-default:"0"`
	PoolSize     int           `yaml:"pool_size" env:"ACCOUNTS_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle      int           `yaml:"min_idle" env:"ACCOUNTS_REDIS_MIN_IDLE" env-default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"ACCOUNTS_REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"ACCOUNTS_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"ACCOUNTS_REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ClientConfig переводит настройки в конфигурацию общего клиента Redis.
func (c *RedisConfig) ClientConfig() *redisdb.Config {
	return &redisdb.Config{
		Host:         c.Host,
		Port:         c.Port,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdle,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}
