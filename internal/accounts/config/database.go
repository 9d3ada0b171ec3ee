package config

import (
	"fmt"
	"time"

	"goaccounts/pkg/db/postgres"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host          string `yaml:"host" env:"ACCOUNTS_POSTGRES_HOST" env-default:"localhost"`
	Port          int    `yaml:"port" env:"ACCOUNTS_POSTGRES_PORT" env-default:"5432"`
	User          string `yaml:"user" env:"ACCOUNTS_POSTGRES_USER" env-default:"postgres"`
	Password      string `yaml:"password" env:"ACCOUNTS_POSTGRES_PASSWORD" env-default:"postgres"`
	Database      string `yaml:"database" env:"ACCOUNTS_POSTGRES_DB" env-default:"accounts"`
	MinConn       int32  `yaml:"min_conn" env:"ACCOUNTS_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn       int32  `yaml:"max_conn" env:"ACCOUNTS_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsDir string `yaml:"migrations_dir" env:"ACCOUNTS_POSTGRES_MIGRATIONS_DIR" env-default:"migrations/accounts"`

	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"ACCOUNTS_POSTGRES_MAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"ACCOUNTS_POSTGRES_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"ACCOUNTS_POSTGRES_CONNECT_TIMEOUT" env-default:"5s"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// PoolOptions возвращает параметры пула соединений.
func (p *PostgresConfig) PoolOptions() postgres.PoolOptions {
	return postgres.PoolOptions{
		MinConns:        p.MinConn,
		MaxConns:        p.MaxConn,
		MaxConnLifetime: p.MaxConnLifetime,
		MaxConnIdleTime: p.MaxConnIdleTime,
		ConnectTimeout:  p.ConnectTimeout,
	}
}
