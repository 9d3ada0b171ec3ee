// Package http содержит компоненты HTTP сервера учетных записей.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/adapters/health"
	"goaccounts/internal/accounts/adapters/http/account"
	"goaccounts/internal/accounts/adapters/http/dto"
	healthhttp "goaccounts/internal/accounts/adapters/http/health"
	"goaccounts/internal/accounts/adapters/http/middleware"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/pkg/logger"
)

// Константы для ответов.
const (
	ErrorRouteNotFound  = "Route not found"
	ErrorInternalServer = "Internal Server Error"
)

// RouterDeps - зависимости маршрутизатора.
type RouterDeps struct {
	Accounts api.AccountUseCase
	Session  middleware.SessionConfig
	Health   *health.Checker
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps RouterDeps) {
	accountHandler := account.NewHandler(deps.Accounts, deps.Session.Cookie)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	if deps.Health != nil {
		app.Get("/healthz", healthhttp.NewHandler(deps.Health).Healthz)
	}

	// API версии 1.
	apiV1 := app.Group("/api/v1", middleware.NewSessionMiddleware(deps.Session))
	apiV1.Get("/me", accountHandler.Me)
	apiV1.Post("/register", accountHandler.Register)
	apiV1.Post("/login", accountHandler.Login)
	apiV1.Post("/logout", accountHandler.Logout)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: ErrorRouteNotFound})
	})
}

// ErrorHandler отвечает JSON-ошибкой. Ошибки, не являющиеся *fiber.Error, отдаются как 500
// без подробностей.
func ErrorHandler(ctx fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := ErrorInternalServer

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		requestCtx := ctx.Context()
		logger.Log(requestCtx).Error(requestCtx, "request failed", zap.Int("status", code), zap.Error(err))
	}

	return ctx.Status(code).JSON(dto.ErrorResponse{Error: message})
}

// NewApp создает приложение fiber с обработчиком ошибок сервиса.
func NewApp(cfg fiber.Config, deps RouterDeps) *fiber.App {
	cfg.ErrorHandler = ErrorHandler
	app := fiber.New(cfg)
	SetupRouter(app, deps)
	return app
}
