package api

// TokenField is the name of the query parameter and body field carrying a token.
const TokenField = "_token"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,username"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	Phone     string `json:"phone" validate:"required,max=32"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
