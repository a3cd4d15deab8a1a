package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/RaufunNazin/Highlighter/internal/db"
	"github.com/RaufunNazin/Highlighter/internal/gateway"
	"github.com/RaufunNazin/Highlighter/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStore(t *testing.T) *session.Store {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return session.NewStore(database.Conn())
}

func newFlow(t *testing.T, serverURL string) (*Flow, *session.Store) {
	t.Helper()
	store := testStore(t)
	gw := gateway.NewClient(serverURL, store, 0, testLogger())
	return NewFlow(gw, store, testLogger()), store
}

func TestLogin_StoresTokenAndProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			json.NewEncoder(w).Encode(gateway.TokenResponse{AccessToken: "tok-1", TokenType: "bearer"})
		case "/me":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("profile fetch auth = %q, want Bearer tok-1", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(session.Profile{ID: 9, Username: "raufun", Email: "r@example.com", Role: 2})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	flow, store := newFlow(t, server.URL)
	ctx := context.Background()

	if err := flow.Login(ctx, "r@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if flow.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", flow.State())
	}
	if store.Token() != "tok-1" {
		t.Errorf("token = %q, want tok-1", store.Token())
	}
	user, _ := store.User(ctx)
	if user == nil || user.Username != "raufun" {
		t.Errorf("user = %+v, want stored profile", user)
	}
}

func TestLogin_ProfileFailureKeepsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			json.NewEncoder(w).Encode(gateway.TokenResponse{AccessToken: "tok-2"})
		case "/me":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"profile service down"}`))
		}
	}))
	defer server.Close()

	flow, store := newFlow(t, server.URL)

	if err := flow.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login() error = %v, profile failure must not fail login", err)
	}

	if flow.State() != StateSucceeded {
		t.Errorf("state = %s, want succeeded", flow.State())
	}
	if store.Token() != "tok-2" {
		t.Errorf("token = %q, want tok-2", store.Token())
	}
}

func TestLogin_RejectedReturnsToIdle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	flow, store := newFlow(t, server.URL)

	err := flow.Login(context.Background(), "u", "wrong")
	if err == nil {
		t.Fatal("expected error for rejected login")
	}

	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *gateway.Error, got %T", err)
	}
	if gwErr.Message() != "Invalid credentials" {
		t.Errorf("message = %q", gwErr.Message())
	}
	if flow.State() != StateIdle {
		t.Errorf("state = %s, want idle after failure", flow.State())
	}
	if store.Token() != "" {
		t.Errorf("token = %q, want empty after rejected login", store.Token())
	}
}

func TestRegister_PasswordMismatch_NoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	flow, _ := newFlow(t, server.URL)

	err := flow.Register(context.Background(), RegisterInput{
		Username:        "raufun",
		Email:           "r@example.com",
		Password:        "one",
		ConfirmPassword: "two",
	})

	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("error = %v, want ErrPasswordMismatch", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server calls = %d, want 0", calls.Load())
	}
	if flow.State() != StateIdle {
		t.Errorf("state = %s, want idle", flow.State())
	}
}

func TestRegister_DefaultRole(t *testing.T) {
	var receivedBody gateway.RegisterRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/register":
			json.NewDecoder(r.Body).Decode(&receivedBody)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(gateway.TokenResponse{AccessToken: "tok-3"})
		case "/me":
			json.NewEncoder(w).Encode(session.Profile{ID: 1, Username: "raufun"})
		}
	}))
	defer server.Close()

	flow, store := newFlow(t, server.URL)

	err := flow.Register(context.Background(), RegisterInput{
		Username:        "raufun",
		Email:           "r@example.com",
		Password:        "pw",
		ConfirmPassword: "pw",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if receivedBody.Role != 2 {
		t.Errorf("role = %d, want 2", receivedBody.Role)
	}
	if store.Token() != "tok-3" {
		t.Errorf("token = %q, want tok-3", store.Token())
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	flow, store := newFlow(t, "http://unused.invalid")
	ctx := context.Background()

	store.SetCredentials(ctx, "tok", &session.Profile{Username: "x"})

	if err := flow.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if store.Token() != "" {
		t.Errorf("token = %q, want empty after logout", store.Token())
	}
	user, _ := store.User(ctx)
	if user != nil {
		t.Errorf("user = %+v, want nil after logout", user)
	}
	if flow.State() != StateIdle {
		t.Errorf("state = %s, want idle", flow.State())
	}
}
