// Package integration provides integration tests for the gigbuddy API.
//
// Tests run against a real gigbuddy HTTP server with the full middleware
// stack and in-memory storage, started in-process using net/http/httptest.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gigbuddy/gigbuddy/pkg/auth"
	"github.com/gigbuddy/gigbuddy/pkg/auth/basic"
	"github.com/gigbuddy/gigbuddy/pkg/auth/bearer"
	"github.com/gigbuddy/gigbuddy/pkg/observability"
	"github.com/gigbuddy/gigbuddy/pkg/password"
	"github.com/gigbuddy/gigbuddy/pkg/session"
	"github.com/gigbuddy/gigbuddy/pkg/storage/memory"
	"github.com/gigbuddy/gigbuddy/pkg/token"
	"github.com/gigbuddy/gigbuddy/pkg/transport"
	transporthttp "github.com/gigbuddy/gigbuddy/pkg/transport/http"
)

// testEnv holds the shared server for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the gigbuddy server under test.
type TestEnvironment struct {
	Server *httptest.Server
}

// TestMain starts the server with the full middleware stack before
// running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Server.Close()
	os.Exit(code)
}

// setupTestEnvironment wires the server exactly as cmd/server does,
// with memory storage and a low bcrypt cost to keep the suite fast.
func setupTestEnvironment() *TestEnvironment {
	store := memory.New()
	hasher := password.New(4)

	codec, err := token.NewCodec([]byte("integration-test-secret"), "gigbuddy-server")
	if err != nil {
		panic(fmt.Sprintf("creating codec: %v", err))
	}

	issuer, err := session.New(store, hasher, codec, 50*time.Second)
	if err != nil {
		panic(fmt.Sprintf("creating issuer: %v", err))
	}

	chain := &auth.Chain{
		Strategies: []auth.Authenticator{
			basic.New(store, hasher),
			bearer.New(store, codec),
		},
	}

	cfg := transporthttp.DefaultConfig()
	adapter := transporthttp.NewAdapter(store, hasher, issuer, chain, cfg)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := transport.Chain(
		transport.Recovery,
		transport.RequestID,
		transport.Logging(logger),
		observability.MetricsMiddleware,
		observability.CountRequests(store, logger),
	)(adapter.Handler())

	return &TestEnvironment{Server: httptest.NewServer(handler)}
}

// BaseURL returns the base URL of the server under test.
func (e *TestEnvironment) BaseURL() string {
	return e.Server.URL
}

// postJSON sends a JSON POST and returns the response.
func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// getURL performs a GET request.
func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the full response body.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
