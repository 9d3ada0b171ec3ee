// Package account содержит HTTP обработчики операций с учетными записями.
package account

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"goaccounts/internal/accounts/adapters/http/dto"
	"goaccounts/internal/accounts/adapters/http/middleware"
	"goaccounts/internal/accounts/domain/services"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerMe       = "account handler: me"
	LogHandlerRegister = "account handler: register"
	LogHandlerLogin    = "account handler: login"
	LogHandlerLogout   = "account handler: logout"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
)

// Handler содержит HTTP обработчики учетных записей.
type Handler struct {
	accounts api.AccountUseCase
	cookie   services.SessionCookie
}

// NewHandler создает новый экземпляр обработчика. cookie - параметры cookie сессии для ее очистки при выходе.
func NewHandler(accounts api.AccountUseCase, cookie services.SessionCookie) *Handler {
	return &Handler{
		accounts: accounts,
		cookie:   cookie,
	}
}

// Me возвращает пользователя текущей сессии.
func (h *Handler) Me(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerMe)

	sess, err := middleware.SessionFrom(ctx)
	if err != nil {
		return err
	}

	user, err := h.accounts.Me(requestCtx, sess)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return fmt.Errorf("resolving current user: %w", err)
	}

	return ctx.JSON(dto.MeResponse{User: dto.FromUser(user)})
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(ctx)
	}

	sess, err := middleware.SessionFrom(ctx)
	if err != nil {
		return err
	}

	response, err := h.accounts.Register(requestCtx, req.ToInput(), sess)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return fmt.Errorf("registering user: %w", err)
	}

	return ctx.JSON(dto.FromUserResponse(response))
}

// Login обрабатывает запрос на вход пользователя.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return badRequest(ctx)
	}

	sess, err := middleware.SessionFrom(ctx)
	if err != nil {
		return err
	}

	response, err := h.accounts.Login(requestCtx, req.UsernameOrEmail, req.Password, sess)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return fmt.Errorf("logging in: %w", err)
	}

	return ctx.JSON(dto.FromUserResponse(response))
}

// Logout уничтожает сессию и очищает cookie.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerLogout)

	sess, err := middleware.SessionFrom(ctx)
	if err != nil {
		return err
	}

	ok := h.accounts.Logout(requestCtx, sess, middleware.NewCookieJar(ctx, h.cookie))

	return ctx.JSON(dto.LogoutResponse{Logout: ok})
}

func badRequest(ctx fiber.Ctx) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
}
