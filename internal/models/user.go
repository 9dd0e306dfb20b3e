package models

import "time"

// User представляет пользователя в системе
type User struct {
	Username     string     `json:"username"`      // уникальный username
	PasswordHash string     `json:"-"`             // bcrypt хеш пароля
	FirstName    string     `json:"first_name"`    // имя
	LastName     string     `json:"last_name"`     // фамилия
	Phone        string     `json:"phone"`         // телефон
	JoinAt       time.Time  `json:"join_at"`       // время регистрации
	LastLoginAt  *time.Time `json:"last_login_at"` // время последнего входа
}

// UserSummary is the public part of a user embedded into listings and messages.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// LoginRecord is returned after a successful login timestamp update.
type LoginRecord struct {
	Username    string    `json:"username"`
	LastLoginAt time.Time `json:"last_login_at"`
}
