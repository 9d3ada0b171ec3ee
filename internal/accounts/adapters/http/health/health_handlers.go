// Package health содержит HTTP обработчик проверки состояния сервиса.
package health

import (
	"github.com/gofiber/fiber/v3"

	"goaccounts/internal/accounts/adapters/health"
)

// Handler отдает отчет о состоянии зависимостей.
type Handler struct {
	checker *health.Checker
}

// NewHandler создает обработчик проверки состояния.
func NewHandler(checker *health.Checker) *Handler {
	return &Handler{checker: checker}
}

// Healthz отвечает 200, если все зависимости доступны, иначе 503.
func (h *Handler) Healthz(ctx fiber.Ctx) error {
	report := h.checker.Check(ctx.Context())

	status := fiber.StatusOK
	if !report.Healthy {
		status = fiber.StatusServiceUnavailable
	}

	return ctx.Status(status).JSON(report)
}
