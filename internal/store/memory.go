package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering an email twice.
	ErrUserExists = errors.New("user already exists")
)

// User is a registered account with its favorite cities.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Accounts is the contract the memory and Postgres stores satisfy.
type Accounts interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	Favorites(ctx context.Context, userID string) ([]string, error)
	AddFavorite(ctx context.Context, userID, city string) ([]string, error)
	RemoveFavorite(ctx context.Context, userID, city string) ([]string, error)
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryStore is a concurrency-safe in-memory account store.
type MemoryStore struct {
	mu sync.RWMutex

	users   map[string]*User // key: user ID
	byEmail map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, email, passwordHash string) (User, error) {
	email = NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return User{}, ErrUserExists
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Favorites:    []string{},
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return clone(u), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(u), nil
}

func (s *MemoryStore) Favorites(ctx context.Context, userID string) ([]string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

// AddFavorite appends city unless it is already present.
func (s *MemoryStore) AddFavorite(_ context.Context, userID, city string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if !contains(u.Favorites, city) {
		u.Favorites = append(u.Favorites, city)
	}
	return append([]string(nil), u.Favorites...), nil
}

// RemoveFavorite drops every occurrence of city.
func (s *MemoryStore) RemoveFavorite(_ context.Context, userID, city string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	kept := u.Favorites[:0]
	for _, f := range u.Favorites {
		if f != city {
			kept = append(kept, f)
		}
	}
	u.Favorites = kept
	return append([]string{}, u.Favorites...), nil
}

func clone(u *User) User {
	c := *u
	c.Favorites = append([]string{}, u.Favorites...)
	return c
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
