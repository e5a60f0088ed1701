package repository

import (
	"context"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

// AuthTokenRepository stores hashed opaque API tokens, one per user.
type AuthTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

// Replace drops the user's previous token and stores the new hash. Pass a
// transaction handle as db to make it part of a larger unit of work.
func (r *AuthTokenRepository) Replace(ctx context.Context, db *gorm.DB, userID int64, hash string) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.AuthToken{UserID: userID, TokenHash: hash}).Error
	})
}

func (r *AuthTokenRepository) UserIDByHash(ctx context.Context, hash string) (int64, error) {
	var t domain.AuthToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return 0, err
	}
	return t.UserID, nil
}

func (r *AuthTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.AuthToken{}).Error
}
