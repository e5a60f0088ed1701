package auth

import (
	"context"
	"time"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/jwt"

	"gorm.io/gorm"
)

// UserRepositoryInterface lists what the auth service needs from storage.
type UserRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	EmailOrUsernameTaken(ctx context.Context, email, username string) (bool, bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	DB() *gorm.DB // for the registration transaction
}

// TokenRepositoryInterface stores hashed opaque tokens.
type TokenRepositoryInterface interface {
	Replace(ctx context.Context, db *gorm.DB, userID int64, hash string) error
	UserIDByHash(ctx context.Context, hash string) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

// FollowChecker resolves is_subscribed for user profiles.
type FollowChecker interface {
	Marked(ctx context.Context, userID int64, targetIDs []int64) (map[int64]bool, error)
}

type jwtService interface {
	GenerateToken(userID int64, staff bool) (string, error)
	ValidateToken(token string) (*jwt.Claims, error)
	TTL() time.Duration
}
