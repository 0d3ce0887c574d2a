package api

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. The password hash never crosses the API
// boundary: it is excluded from JSON and from the String representation.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// String implements fmt.Stringer without exposing the password hash.
func (u *User) String() string {
	return "user(" + u.ID.String() + " " + u.Email + ")"
}

// Response returns the outward-facing representation of the user.
func (u *User) Response() UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the outward-facing user representation.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token string `json:"token"`
}
