package entities

// Поля, на которые ссылаются ошибки.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// FieldError описывает ошибку валидации или аутентификации конкретного поля.
type FieldError struct {
	Field   string
	Message string
}

// UserResponse содержит либо непустой список ошибок, либо пользователя.
type UserResponse struct {
	Errors []FieldError
	User   *User
}

// NewErrorResponse создает ответ с ошибками.
func NewErrorResponse(errs ...FieldError) *UserResponse {
	return &UserResponse{Errors: errs}
}

// NewUserResponse создает успешный ответ.
func NewUserResponse(user *User) *UserResponse {
	return &UserResponse{User: user}
}

// HasErrors сообщает, содержит ли ответ ошибки.
func (r *UserResponse) HasErrors() bool {
	return len(r.Errors) > 0
}

// RegisterInput - данные регистрации.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}
