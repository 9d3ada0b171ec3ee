package app

import (
	"strings"
	"unicode/utf8"

	"goaccounts/internal/accounts/domain/entities"
)

const (
	minUsernameLength = 3
	minPasswordLength = 3

	msgInvalidEmail    = "invalid email"
	msgLengthTooShort  = "length must be greater than 2"
	msgUsernameHasAt   = "cannot include an @"
	msgUsernameTaken   = "username already taken"
	msgEmailTaken      = "email already taken"
	msgUsernameMissing = "username does not exist"
	msgPasswordWrong   = "incorrect password"
)

// validateRegister проверяет формат регистрационных данных. Длина считается в символах, а не в байтах.
// Для каждого поля возвращается не больше одной ошибки, в порядке email, username, password.
func validateRegister(input entities.RegisterInput) []entities.FieldError {
	var errs []entities.FieldError

	if !strings.Contains(input.Email, "@") {
		errs = append(errs, entities.FieldError{Field: entities.FieldEmail, Message: msgInvalidEmail})
	}

	switch {
	case utf8.RuneCountInString(input.Username) < minUsernameLength:
		errs = append(errs, entities.FieldError{Field: entities.FieldUsername, Message: msgLengthTooShort})
	case strings.Contains(input.Username, "@"):
		errs = append(errs, entities.FieldError{Field: entities.FieldUsername, Message: msgUsernameHasAt})
	}

	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		errs = append(errs, entities.FieldError{Field: entities.FieldPassword, Message: msgLengthTooShort})
	}

	return errs
}

// isEmail определяет, по какому полю искать пользователя при входе.
func isEmail(usernameOrEmail string) bool {
	return strings.Contains(usernameOrEmail, "@")
}

// ValidateRegisterForTest экспортирует validateRegister для тестов.
func ValidateRegisterForTest(input entities.RegisterInput) []entities.FieldError {
	return validateRegister(input)
}
