// Package dto содержит объекты передачи данных HTTP API учетных записей.
package dto

import (
	"time"

	"goaccounts/internal/accounts/domain/entities"
)

// UsernamePasswordInput содержит данные регистрации.
type UsernamePasswordInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest - тело запроса регистрации.
type RegisterRequest struct {
	Options UsernamePasswordInput `json:"options"`
}

// LoginRequest - тело запроса входа.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// User - публичное представление пользователя. Хэш пароля не передается.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FieldError - ошибка конкретного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UserResponse содержит либо errors, либо user.
type UserResponse struct {
	Errors []FieldError `json:"errors,omitempty"`
	User   *User        `json:"user,omitempty"`
}

// MeResponse - ответ на запрос текущего пользователя; user равен null для анонимной сессии.
type MeResponse struct {
	User *User `json:"user"`
}

// LogoutResponse - ответ на запрос выхода.
type LogoutResponse struct {
	Logout bool `json:"logout"`
}

// ErrorResponse - ответ при ошибке запроса или сервера.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToInput переводит запрос регистрации в доменные данные.
func (r *RegisterRequest) ToInput() entities.RegisterInput {
	return entities.RegisterInput{
		Username: r.Options.Username,
		Email:    r.Options.Email,
		Password: r.Options.Password,
	}
}

// FromUser переводит доменного пользователя в DTO. nil остается nil.
func FromUser(user *entities.User) *User {
	if user == nil {
		return nil
	}
	return &User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// FromUserResponse переводит доменный ответ в DTO.
func FromUserResponse(resp *entities.UserResponse) UserResponse {
	if resp == nil {
		return UserResponse{}
	}

	if !resp.HasErrors() {
		return UserResponse{User: FromUser(resp.User)}
	}

	out := UserResponse{Errors: make([]FieldError, 0, len(resp.Errors))}
	for _, e := range resp.Errors {
		out.Errors = append(out.Errors, FieldError{Field: e.Field, Message: e.Message})
	}
	return out
}
