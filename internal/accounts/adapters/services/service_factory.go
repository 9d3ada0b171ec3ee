// Package services содержит реализации хэширования паролей и подписи cookie сессии.
package services

import (
	"time"

	"goaccounts/internal/accounts/domain/services"
	svc "goaccounts/internal/accounts/ports/services"
)

// ServiceFactory создает сервисы, нужные сценариям учетных записей.
type ServiceFactory struct {
	passwordService svc.PasswordService
	cookieSigner    svc.CookieSigner
}

// NewServiceFactory создает фабрику сервисов.
func NewServiceFactory(
	algorithm string,
	argon2 services.Argon2Params,
	bcryptCost int,
	sessionSecret, issuer string,
	sessionTTL time.Duration,
) (*ServiceFactory, error) {
	passwordService, err := NewAdaptive(algorithm, argon2, bcryptCost)
	if err != nil {
		return nil, err
	}

	return &ServiceFactory{
		passwordService: passwordService,
		cookieSigner:    NewCookieSigner(sessionSecret, issuer, sessionTTL),
	}, nil
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() svc.PasswordService {
	return f.passwordService
}

// CookieSigner возвращает сервис подписи cookie сессии.
func (f *ServiceFactory) CookieSigner() svc.CookieSigner {
	return f.cookieSigner
}
