package api

import (
	"fmt"
	"strings"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MinPasswordLength int
	MaxPasswordLength int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
// The bcrypt input limit caps the maximum password length at 72 bytes.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MinPasswordLength: 8,
		MaxPasswordLength: 72,
	}
}

// ValidateCreateUser checks a registration request for validity. It returns
// an *APIError describing the first validation failure, or nil if the
// request is valid.
func ValidateCreateUser(req *CreateUserRequest, cfg ValidationConfig) *APIError {
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if len(req.Password) < cfg.MinPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", cfg.MinPasswordLength))
	}

	if cfg.MaxPasswordLength > 0 && len(req.Password) > cfg.MaxPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at most %d characters", cfg.MaxPasswordLength))
	}

	if req.Password != req.PasswordConfirmation {
		return NewInvalidRequestError("password_confirmation", "Passwords did not match")
	}

	return nil
}

// ValidateLogin checks a login request for structural validity. Credential
// correctness is not checked here; that is the session issuer's job.
func ValidateLogin(req *LoginRequest) *APIError {
	if req.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if req.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	return nil
}

// validateEmail applies a minimal structural check. Full RFC 5322 parsing
// is deliberately avoided; the unique index on the store is the final
// arbiter of acceptability.
func validateEmail(email string) *APIError {
	if email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return NewInvalidRequestError("email", "email is not valid")
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return NewInvalidRequestError("email", "email is not valid")
	}
	return nil
}
