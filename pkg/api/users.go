package api

import "time"

// UserSummary is the public part of a user.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserContact is a user as embedded into messages.
type UserContact struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UserDetail is the full profile returned to its owner.
type UserDetail struct {
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	JoinAt      time.Time  `json:"join_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// UsersResponse is returned by GET /users.
type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

// UserResponse is returned by GET /users/{username}.
type UserResponse struct {
	User UserDetail `json:"user"`
}
