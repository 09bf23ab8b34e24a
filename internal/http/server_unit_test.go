package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openlearn/auth-service/internal/config"
	"github.com/openlearn/auth-service/internal/service"
	"github.com/openlearn/auth-service/internal/token"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		JWTIssuer:    "test-issuer",
		TokenTTL:     time.Minute,
		StoreTimeout: time.Second,
		Environment:  "production",
	}
}

// newBareServer builds a server with no credential store behind it. Only
// paths that reject a request before any store access may be exercised.
func newBareServer() *Server {
	cfg := testConfig()
	return NewServer(cfg, nil, service.NewAuthService(nil, cfg), nil)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer":         "",
		"Basic abc":      "",
		"Bearer abc":     "abc",
		"bearer abc":     "abc",
		"Bearer  abc ":   "abc",
		"Bearer abc def": "abc def",
	}
	for header, expect := range cases {
		if got := bearerToken(header); got != expect {
			t.Fatalf("header %q: expected %q, got %q", header, expect, got)
		}
	}
}

func TestGuardRejectsWithoutToken(t *testing.T) {
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	resp := doReq(t, http.MethodGet, app.URL+"/api/auth/admin/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if msg := readMessage(t, resp); msg != "No token provided" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	resp := doReq(t, http.MethodGet, app.URL+"/api/auth/user/me", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if msg := readMessage(t, resp); msg != "Invalid token" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	expired, err := token.New(cfg.JWTSecret, cfg.JWTIssuer, -time.Minute, "admin-1", "ADMIN")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	resp := doReq(t, http.MethodGet, app.URL+"/api/auth/admin/me", expired, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginValidationRejectedBeforeStore(t *testing.T) {
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	cases := []struct {
		body    map[string]string
		message string
	}{
		{map[string]string{"email": "", "password": "longenough1"}, "Email is required"},
		{map[string]string{"email": "nope", "password": "longenough1"}, "Invalid email format"},
		{map[string]string{"email": "a@b.com", "password": ""}, "Password is required"},
		{map[string]string{"email": "a@b.com", "password": "short"}, "Password must be at least 8 characters long"},
	}
	for _, tc := range cases {
		for _, path := range []string{"/api/auth/admin/login", "/api/auth/user/login"} {
			resp := doReq(t, http.MethodPost, app.URL+path, "", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("%s %v: expected 400, got %d", path, tc.body, resp.StatusCode)
			}
			if msg := readMessage(t, resp); msg != tc.message {
				t.Fatalf("%s %v: expected %q, got %q", path, tc.body, tc.message, msg)
			}
		}
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	req, err := http.NewRequest(http.MethodPost, app.URL+"/api/auth/admin/login", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// Clients may send fields beyond email and password; they are ignored, not
// treated as a malformed body.
func TestLoginToleratesExtraBodyFields(t *testing.T) {
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	resp := doReq(t, http.MethodPost, app.URL+"/api/auth/admin/login", "", map[string]interface{}{
		"email": "a@b.com", "password": "short", "remember": true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if msg := readMessage(t, resp); msg != "Password must be at least 8 characters long" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestTestRouteAndHeaders(t *testing.T) {
	app := httptest.NewServer(newBareServer().Router())
	defer app.Close()

	resp := doReq(t, http.MethodGet, app.URL+"/test", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if msg := readMessage(t, resp); msg != "Server is running" {
		t.Fatalf("unexpected message %q", msg)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff header, got %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected deny frame header, got %q", got)
	}
}

func TestLoginLimiterDisabledWithoutRedis(t *testing.T) {
	limiter := newLoginLimiter(nil, 1, time.Minute)
	for i := 0; i < 10; i++ {
		if !limiter.allow(context.Background(), "203.0.113.1") {
			t.Fatalf("expected limiter without redis to allow")
		}
	}
}

func doReq(t *testing.T, method, url, tok string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func readMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return body.Message
}
