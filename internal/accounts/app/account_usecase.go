// Package app содержит сценарии регистрации, входа, выхода и получения текущего пользователя.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/ports/api"
	"goaccounts/internal/accounts/ports/repositories"
	svc "goaccounts/internal/accounts/ports/services"
	"goaccounts/pkg/logger"
)

const (
	methodMe       = "Me"
	methodRegister = "Register"
	methodLogin    = "Login"
	methodLogout   = "Logout"

	msgNoSessionUser       = "session carries no user"
	msgSessionUserMissing  = "session references a missing user"
	msgCurrentUserResolved = "current user resolved"
	msgStartRegistration   = "starting user registration"
	msgRegisterInvalid     = "registration input rejected"
	msgDuplicateUser       = "registration hit a unique constraint"
	msgUserRegistered      = "user registered successfully"
	msgLoginAttempt        = "login attempt"
	msgLoginUnknownUser    = "login attempt for non-existent user"
	msgLoginWrongPassword  = "invalid password provided"
	msgUserLoggedIn        = "user logged in successfully"
	msgProcessingLogout    = "processing logout request"
	msgUserLoggedOut       = "user logged out successfully"

	msgErrFindingUser       = "failed to find user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrVerifyingPassword = "error verifying password"
	msgErrDestroySession    = "failed to destroy session"

	errCtxFindingUser       = "finding user"
	errCtxHashingPassword   = "hashing password"
	errCtxCreatingUser      = "creating user"
	errCtxVerifyingPassword = "verifying password"
)

// AccountUseCaseImpl реализует api.AccountUseCase.
type AccountUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	cookieName  string
	now         func() time.Time
}

// NewAccountUseCase создает сервис учетных записей. cookieName - имя cookie сессии, которое очищается при выходе.
func NewAccountUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	cookieName string,
) api.AccountUseCase {
	return &AccountUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		cookieName:  cookieName,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Me возвращает пользователя текущей сессии или nil, если сессия анонимна
// либо ссылается на удаленного пользователя.
func (a *AccountUseCaseImpl) Me(ctx context.Context, session svc.Session) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodMe))

	userID, ok := session.UserID()
	if !ok {
		log.Debug(ctx, msgNoSessionUser)
		return nil, nil
	}

	log = log.With(zap.String("userID", userID))

	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgSessionUserMissing)
			return nil, nil
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	log.Debug(ctx, msgCurrentUserResolved)
	return user, nil
}

// Register проверяет данные, создает пользователя и привязывает его к сессии.
func (a *AccountUseCaseImpl) Register(
	ctx context.Context,
	input entities.RegisterInput,
	session svc.Session,
) (*entities.UserResponse, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("username", input.Username))
	log.Debug(ctx, msgStartRegistration)

	if errs := validateRegister(input); len(errs) > 0 {
		log.Debug(ctx, msgRegisterInvalid, zap.Int("errors", len(errs)))
		return entities.NewErrorResponse(errs...), nil
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, input.Password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	now := a.now()
	created, err := a.userRepo.Create(ctx, &entities.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if fieldErr, ok := duplicateFieldError(err); ok {
			log.Debug(ctx, msgDuplicateUser, zap.String("field", fieldErr.Field))
			return entities.NewErrorResponse(fieldErr), nil
		}
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	session.SetUserID(created.ID)

	log.Info(ctx, msgUserRegistered, zap.String("userID", created.ID))
	return entities.NewUserResponse(created), nil
}

// Login ищет пользователя по email (если идентификатор содержит @) или по username,
// проверяет пароль и привязывает пользователя к сессии.
func (a *AccountUseCaseImpl) Login(
	ctx context.Context,
	usernameOrEmail, password string,
	session svc.Session,
) (*entities.UserResponse, error) {
	byEmail := isEmail(usernameOrEmail)
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.Bool("byEmail", byEmail))
	log.Debug(ctx, msgLoginAttempt)

	var (
		user *entities.User
		err  error
	)
	if byEmail {
		user, err = a.userRepo.FindByEmail(ctx, usernameOrEmail)
	} else {
		user, err = a.userRepo.FindByUsername(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginUnknownUser)
			return entities.NewErrorResponse(entities.FieldError{
				Field:   entities.FieldUsername,
				Message: msgUsernameMissing,
			}), nil
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	log = log.With(zap.String("userID", user.ID))

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgLoginWrongPassword)
		return entities.NewErrorResponse(entities.FieldError{
			Field:   entities.FieldPassword,
			Message: msgPasswordWrong,
		}), nil
	}

	session.SetUserID(user.ID)

	log.Info(ctx, msgUserLoggedIn)
	return entities.NewUserResponse(user), nil
}

// Logout уничтожает сессию и всегда очищает cookie сессии.
// Возвращает false, только если хранилище сессий сообщило об ошибке.
func (a *AccountUseCaseImpl) Logout(ctx context.Context, session svc.Session, cookies svc.CookieClearer) bool {
	log := logger.Log(ctx).With(zap.String("method", methodLogout), zap.String("sessionID", session.ID()))
	log.Debug(ctx, msgProcessingLogout)

	err := session.Destroy(ctx)
	cookies.ClearCookie(a.cookieName)

	if err != nil {
		log.Error(ctx, msgErrDestroySession, zap.Error(err))
		return false
	}

	log.Info(ctx, msgUserLoggedOut)
	return true
}

// duplicateFieldError переводит нарушение уникальности в ошибку поля.
func duplicateFieldError(err error) (entities.FieldError, bool) {
	switch {
	case errors.Is(err, entities.ErrEmailTaken):
		return entities.FieldError{Field: entities.FieldEmail, Message: msgEmailTaken}, true
	case errors.Is(err, entities.ErrUsernameTaken), errors.Is(err, entities.ErrUserAlreadyExists):
		return entities.FieldError{Field: entities.FieldUsername, Message: msgUsernameTaken}, true
	default:
		return entities.FieldError{}, false
	}
}

// SetClockForTest подменяет источник времени.
func (a *AccountUseCaseImpl) SetClockForTest(now func() time.Time) {
	a.now = now
}
