package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/i474232898/agro-weather/internal/store"
)

// UserIDKey is the fiber Locals key the middleware stores the user ID under.
const UserIDKey = "userID"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingSecret      = errors.New("jwt secret is not configured")
)

// Config holds authentication configuration.
type Config struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Manager registers users, checks credentials and issues tokens.
type Manager struct {
	config   Config
	accounts store.Accounts
	now      func() time.Time
}

// NewManager creates a new authentication manager.
func NewManager(config Config, accounts store.Accounts) (*Manager, error) {
	if config.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 7 * 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Manager{config: config, accounts: accounts, now: time.Now}, nil
}

// Register hashes the password, creates the user and returns a token for it.
func (m *Manager) Register(ctx context.Context, email, password string) (string, store.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.config.BcryptCost)
	if err != nil {
		return "", store.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := m.accounts.CreateUser(ctx, email, string(hash))
	if err != nil {
		return "", store.User{}, err
	}
	token, err := m.GenerateJWT(user.ID)
	if err != nil {
		return "", store.User{}, err
	}
	return token, user, nil
}

// Login validates email and password and returns a fresh token.
func (m *Manager) Login(ctx context.Context, email, password string) (string, store.User, error) {
	user, err := m.accounts.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", store.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", store.User{}, ErrInvalidCredentials
	}
	token, err := m.GenerateJWT(user.ID)
	if err != nil {
		return "", store.User{}, err
	}
	return token, user, nil
}

// GenerateJWT creates an HS256 token whose subject is the user ID.
func (m *Manager) GenerateJWT(userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
		Issuer:    "agro-weather",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.JWTSecret))
}

// ValidateJWT parses the token and returns the user ID it was issued for.
func (m *Manager) ValidateJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.JWTSecret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// user ID in c.Locals(UserIDKey).
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header required")
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization format")
		}

		userID, err := m.ValidateJWT(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidToken.Error())
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user ID set by Middleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
