package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// userRecord is the users table row. Favorites is a text[] column.
type userRecord struct {
	ID           string         `gorm:"type:uuid;primaryKey"`
	Email        string         `gorm:"uniqueIndex;not null"`
	PasswordHash string         `gorm:"not null"`
	Favorites    pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toUser() User {
	favs := []string(r.Favorites)
	if favs == nil {
		favs = []string{}
	}
	return User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Favorites:    favs,
		CreatedAt:    r.CreatedAt,
	}
}

// GormStore keeps accounts in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

// ConnectPostgres opens the database, sizes the pool and migrates the users table.
func ConnectPostgres(databaseURL string) (*GormStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}

	log.Printf("INFO: PostgreSQL connected")
	return &GormStore{db: db}, nil
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	rec := userRecord{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Favorites:    pq.StringArray{},
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return rec.toUser(), nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.first(ctx, "email = ?", NormalizeEmail(email))
}

func (s *GormStore) GetUser(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrNotFound
	}
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) first(ctx context.Context, query string, arg interface{}) (User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where(query, arg).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return rec.toUser(), nil
}

func (s *GormStore) Favorites(ctx context.Context, userID string) ([]string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Favorites, nil
}

// AddFavorite appends city in a single statement unless it is already present.
func (s *GormStore) AddFavorite(ctx context.Context, userID, city string) ([]string, error) {
	return s.updateFavorites(ctx, userID,
		"CASE WHEN ?::text = ANY(favorites) THEN favorites ELSE array_append(favorites, ?::text) END", city, city)
}

func (s *GormStore) RemoveFavorite(ctx context.Context, userID, city string) ([]string, error) {
	return s.updateFavorites(ctx, userID, "array_remove(favorites, ?::text)", city)
}

func (s *GormStore) updateFavorites(ctx context.Context, userID, expr string, args ...interface{}) ([]string, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&userRecord{}).
		Where("id = ?", userID).
		Update("favorites", gorm.Expr(expr, args...))
	if res.Error != nil {
		return nil, fmt.Errorf("update favorites: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Favorites(ctx, userID)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
