package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gigbuddy/gigbuddy/pkg/api"
	"github.com/gigbuddy/gigbuddy/pkg/auth"
	"github.com/gigbuddy/gigbuddy/pkg/auth/basic"
	"github.com/gigbuddy/gigbuddy/pkg/auth/bearer"
	"github.com/gigbuddy/gigbuddy/pkg/password"
	"github.com/gigbuddy/gigbuddy/pkg/session"
	"github.com/gigbuddy/gigbuddy/pkg/storage/memory"
	"github.com/gigbuddy/gigbuddy/pkg/token"
)

// newTestAdapter wires a complete adapter against in-memory storage.
// Bcrypt cost is kept at the minimum so the suite stays fast.
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()

	store := memory.New()
	hasher := password.New(4)

	codec, err := token.NewCodec([]byte("test-signing-secret"), "gigbuddy-server")
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}

	issuer, err := session.New(store, hasher, codec, 50*time.Second)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}

	chain := &auth.Chain{
		Strategies: []auth.Authenticator{
			basic.New(store, hasher),
			bearer.New(store, codec),
		},
	}

	cfg := DefaultConfig()
	cfg.MetricsPath = "" // metrics endpoint is not under test here
	return NewAdapter(store, hasher, issuer, chain, cfg)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, handler http.Handler, email, pass string) api.UserResponse {
	t.Helper()
	rec := postJSON(t, handler, "/users", api.CreateUserRequest{
		Email:                email,
		Password:             pass,
		PasswordConfirmation: pass,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp api.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode registration response: %v", err)
	}
	return resp
}

func TestCreateUser(t *testing.T) {
	h := newTestAdapter(t).Handler()

	resp := registerUser(t, h, "alice@example.com", "opensesame")
	if resp.Email != "alice@example.com" {
		t.Errorf("expected registered email back, got %q", resp.Email)
	}
	if resp.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated user ID")
	}
}

func TestCreateUser_NeverReturnsHash(t *testing.T) {
	h := newTestAdapter(t).Handler()

	rec := postJSON(t, h, "/users", api.CreateUserRequest{
		Email:                "alice@example.com",
		Password:             "opensesame",
		PasswordConfirmation: "opensesame",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "$2a$") || strings.Contains(body, "password") {
		t.Errorf("response leaks password material: %s", body)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	h := newTestAdapter(t).Handler()
	registerUser(t, h, "alice@example.com", "opensesame")

	rec := postJSON(t, h, "/users", api.CreateUserRequest{
		Email:                "ALICE@example.com",
		Password:             "different1",
		PasswordConfirmation: "different1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestCreateUser_PasswordMismatch(t *testing.T) {
	h := newTestAdapter(t).Handler()

	rec := postJSON(t, h, "/users", api.CreateUserRequest{
		Email:                "alice@example.com",
		Password:             "opensesame",
		PasswordConfirmation: "somethingelse",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched passwords, got %d", rec.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error.Message != "Passwords did not match" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
}

func TestCreateUser_InvalidJSON(t *testing.T) {
	h := newTestAdapter(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestCreateUser_WrongContentType(t *testing.T) {
	h := newTestAdapter(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("email=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h := newTestAdapter(t).Handler()
	registerUser(t, h, "alice@example.com", "opensesame")

	rec := postJSON(t, h, "/users/login", api.LoginRequest{
		Email:    "alice@example.com",
		Password: "opensesame",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp api.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	if strings.Count(resp.Token, ".") != 2 {
		t.Errorf("expected a JWT, got %q", resp.Token)
	}
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	h := newTestAdapter(t).Handler()
	registerUser(t, h, "alice@example.com", "opensesame")

	wrongPass := postJSON(t, h, "/users/login", api.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	unknown := postJSON(t, h, "/users/login", api.LoginRequest{
		Email:    "nobody@example.com",
		Password: "wrong-password",
	})

	if wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", wrongPass.Code)
	}
	if unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Errorf("failure responses differ:\n%s\n%s", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestMe_WithBearerToken(t *testing.T) {
	h := newTestAdapter(t).Handler()
	created := registerUser(t, h, "alice@example.com", "opensesame")

	login := postJSON(t, h, "/users/login", api.LoginRequest{
		Email:    "alice@example.com",
		Password: "opensesame",
	})
	var tok api.TokenResponse
	if err := json.Unmarshal(login.Body.Bytes(), &tok); err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var me api.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if me.ID != created.ID || me.Email != "alice@example.com" {
		t.Errorf("unexpected identity: %+v", me)
	}
}

func TestMe_WithBasicAuth(t *testing.T) {
	h := newTestAdapter(t).Handler()
	registerUser(t, h, "alice@example.com", "opensesame")

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.SetBasicAuth("alice@example.com", "opensesame")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with basic credentials, got %d", rec.Code)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	h := newTestAdapter(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error.Type != api.ErrorTypeUnauthorized {
		t.Errorf("expected unauthorized error type, got %q", resp.Error.Type)
	}
}

func TestMe_ForgedToken(t *testing.T) {
	h := newTestAdapter(t).Handler()
	registerUser(t, h, "alice@example.com", "opensesame")

	otherCodec, err := token.NewCodec([]byte("attacker-secret"), "gigbuddy-server")
	if err != nil {
		t.Fatal(err)
	}
	claims := otherCodec.NewClaims(uuid.New(), "alice@example.com", time.Now(), time.Minute)
	forged, err := otherCodec.Sign(claims)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestAdapter(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBodySizeLimit(t *testing.T) {
	a := newTestAdapter(t)
	a.config.MaxBodySize = 64
	h := a.Handler()

	req := httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"email":"`+strings.Repeat("a", 200)+`@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized body, got %d", rec.Code)
	}
}
