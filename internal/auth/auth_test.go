package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/i474232898/agro-weather/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}, store.NewMemoryStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(Config{}, store.NewMemoryStore()); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	token, user, err := m.Register(ctx, "farmer@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("password stored in clear text")
	}
	id, err := m.ValidateJWT(token)
	if err != nil || id != user.ID {
		t.Fatalf("token does not carry the user ID: %q %v", id, err)
	}

	if _, _, err := m.Register(ctx, "farmer@example.com", "again"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if _, _, err := m.Login(ctx, "farmer@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := m.Login(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	_, logged, err := m.Login(ctx, "Farmer@Example.com", "s3cret")
	if err != nil || logged.ID != user.ID {
		t.Fatalf("login failed: %+v %v", logged, err)
	}
}

func TestValidateJWTRejects(t *testing.T) {
	m := newTestManager(t)
	token, err := m.GenerateJWT("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other, _ := NewManager(Config{JWTSecret: "other"}, store.NewMemoryStore())
	if _, err := other.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := m.ValidateJWT("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t)
	token, _ := m.GenerateJWT("user-1")

	app := fiber.New()
	app.Get("/me", m.Middleware(), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer abc", fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}
}
