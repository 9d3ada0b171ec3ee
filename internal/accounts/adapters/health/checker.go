// Package health проверяет зависимости сервиса: Postgres и хранилище сессий.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"goaccounts/pkg/logger"
)

const msgDependencyDown = "dependency health check failed"

// Pinger - зависимость, доступность которой проверяется командой ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc позволяет использовать функцию как Pinger.
type PingFunc func(ctx context.Context) error

// Ping вызывает f(ctx).
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Status - результат проверки одной зависимости.
type Status struct {
	Name  string `json:"name"`
	Up    bool   `json:"up"`
	Error string `json:"error,omitempty"`
}

// Report - результат проверки всех зависимостей.
type Report struct {
	Healthy      bool     `json:"healthy"`
	Dependencies []Status `json:"dependencies"`
}

// Checker параллельно опрашивает зарегистрированные зависимости.
type Checker struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewChecker создает проверку с ограничением времени на одну зависимость.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{deps: make(map[string]Pinger), timeout: timeout}
}

// Register добавляет зависимость под именем name.
func (c *Checker) Register(name string, dep Pinger) *Checker {
	c.deps[name] = dep
	return c
}

// Check опрашивает все зависимости и возвращает отчет, упорядоченный по имени.
func (c *Checker) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = Report{Healthy: true}
	)

	for name, dep := range c.deps {
		wg.Add(1)
		go func(name string, dep Pinger) {
			defer wg.Done()

			pingCtx := ctx
			if c.timeout > 0 {
				var cancel context.CancelFunc
				pingCtx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}

			status := Status{Name: name, Up: true}
			if err := dep.Ping(pingCtx); err != nil {
				logger.Log(ctx).Warn(ctx, msgDependencyDown, zap.String("dependency", name), zap.Error(err))
				status.Up = false
				status.Error = err.Error()
			}

			mu.Lock()
			report.Dependencies = append(report.Dependencies, status)
			if !status.Up {
				report.Healthy = false
			}
			mu.Unlock()
		}(name, dep)
	}
	wg.Wait()

	sort.Slice(report.Dependencies, func(i, j int) bool {
		return report.Dependencies[i].Name < report.Dependencies[j].Name
	})

	return report
}
