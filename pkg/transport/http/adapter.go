// Package http serves the gigbuddy user API over HTTP: registration,
// login, and the authenticated /users/me endpoint.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gigbuddy/gigbuddy/pkg/api"
	"github.com/gigbuddy/gigbuddy/pkg/auth"
	"github.com/gigbuddy/gigbuddy/pkg/password"
	"github.com/gigbuddy/gigbuddy/pkg/session"
	"github.com/gigbuddy/gigbuddy/pkg/storage"
	"github.com/gigbuddy/gigbuddy/pkg/transport"
)

// Adapter routes user API requests to the auth pipeline.
type Adapter struct {
	users      storage.UserStore
	hasher     *password.Hasher
	issuer     *session.Issuer
	chain      *auth.Chain
	mux        *http.ServeMux
	config     Config
	validation api.ValidationConfig
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
	MetricsPath string // empty disables the metrics endpoint
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MB
		MetricsPath: "/metrics",
	}
}

// NewAdapter creates the HTTP adapter. The chain decides who the caller
// is; the guard on /users/me turns "nobody" into a 401.
func NewAdapter(users storage.UserStore, hasher *password.Hasher, issuer *session.Issuer, chain *auth.Chain, cfg Config) *Adapter {
	a := &Adapter{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		chain:      chain,
		mux:        http.NewServeMux(),
		config:     cfg,
		validation: api.DefaultValidationConfig(),
	}

	a.mux.HandleFunc("POST /users", a.handleCreateUser)
	a.mux.HandleFunc("POST /users/login", a.handleLogin)

	authn := auth.Middleware(chain)
	a.mux.Handle("GET /users/me", authn(auth.Guard(http.HandlerFunc(a.handleMe))))

	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// handleCreateUser handles POST /users (registration).
func (a *Adapter) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.CreateUserRequest
	if !a.decode(w, r, &req) {
		return
	}

	if apiErr := api.ValidateCreateUser(&req, a.validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		transport.WriteAPIError(w, api.NewServerError("could not create user"))
		return
	}

	user := &api.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := a.users.Save(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			transport.WriteAPIError(w, api.NewConflictError("email", "email is already registered"))
			return
		}
		transport.WriteAPIError(w, api.NewServerError("could not create user"))
		return
	}

	transport.WriteJSON(w, http.StatusCreated, user.Response())
}

// handleLogin handles POST /users/login.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !a.decode(w, r, &req) {
		return
	}

	if apiErr := api.ValidateLogin(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	token, err := a.issuer.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password are deliberately the same
		// response; anything else is an internal failure.
		if errors.Is(err, session.ErrInvalidCredentials) {
			transport.WriteAPIError(w, api.NewUnauthorizedError())
			return
		}
		transport.WriteAPIError(w, api.NewServerError("login failed"))
		return
	}

	transport.WriteJSON(w, http.StatusOK, api.TokenResponse{Token: token})
}

// handleMe handles GET /users/me. The guard guarantees a principal.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := auth.Require(r.Context())
	if err != nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError())
		return
	}
	transport.WriteJSON(w, http.StatusOK, user.Response())
}

// decode reads a JSON body with the configured size limit. Returns false
// after writing an error response if decoding fails.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}

	return true
}
