package repository

import (
	"context"
	"errors"

	"foodgram/internal/database"
	"foodgram/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrRelationExists   = errors.New("relation already exists")
	ErrRelationNotFound = errors.New("relation not found")
)

// Ledger stores one kind of "user marks target" row. The three relations of
// the app (follows, favorites, basket) differ only in table and target
// column, so they share this implementation.
type Ledger[T any, P ledgerRow[T]] struct {
	db           *gorm.DB
	targetColumn string
	newRow       func(userID, targetID int64) P
}

type ledgerRow[T any] interface {
	*T
	Entry() domain.LedgerEntry
}

func NewLedger[T any, P ledgerRow[T]](db *gorm.DB, targetColumn string, newRow func(userID, targetID int64) P) *Ledger[T, P] {
	return &Ledger[T, P]{db: db, targetColumn: targetColumn, newRow: newRow}
}

func NewFollowLedger(db *gorm.DB) *Ledger[domain.Follow, *domain.Follow] {
	return NewLedger(db, "author_id", func(userID, authorID int64) *domain.Follow {
		return &domain.Follow{UserID: userID, AuthorID: authorID}
	})
}

func NewFavoriteLedger(db *gorm.DB) *Ledger[domain.FavourRecipe, *domain.FavourRecipe] {
	return NewLedger(db, "recipe_id", func(userID, recipeID int64) *domain.FavourRecipe {
		return &domain.FavourRecipe{UserID: userID, RecipeID: recipeID}
	})
}

func NewBasketLedger(db *gorm.DB) *Ledger[domain.Basket, *domain.Basket] {
	return NewLedger(db, "recipe_id", func(userID, recipeID int64) *domain.Basket {
		return &domain.Basket{UserID: userID, RecipeID: recipeID}
	})
}

func (l *Ledger[T, P]) pair(ctx context.Context, userID, targetID int64) *gorm.DB {
	return l.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND "+l.targetColumn+" = ?", userID, targetID)
}

func (l *Ledger[T, P]) Exists(ctx context.Context, userID, targetID int64) (bool, error) {
	var count int64
	if err := l.pair(ctx, userID, targetID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add inserts the row. The existence check only produces a friendly error;
// the unique index is what actually guards concurrent inserts, and its
// violation is reported the same way. A target deleted in between trips
// the foreign key and comes back as ErrMissingReference.
func (l *Ledger[T, P]) Add(ctx context.Context, userID, targetID int64) (P, error) {
	exists, err := l.Exists(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRelationExists
	}

	row := l.newRow(userID, targetID)
	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, ErrRelationExists
		case database.IsForeignKeyViolation(err):
			return nil, ErrMissingReference
		}
		return nil, err
	}
	return row, nil
}

// Mark is Add reduced to the stored entry.
func (l *Ledger[T, P]) Mark(ctx context.Context, userID, targetID int64) (domain.LedgerEntry, error) {
	row, err := l.Add(ctx, userID, targetID)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return row.Entry(), nil
}

func (l *Ledger[T, P]) Unmark(ctx context.Context, userID, targetID int64) error {
	res := l.db.WithContext(ctx).
		Where("user_id = ? AND "+l.targetColumn+" = ?", userID, targetID).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRelationNotFound
	}
	return nil
}

// Marked reports which of targetIDs the user has marked.
func (l *Ledger[T, P]) Marked(ctx context.Context, userID int64, targetIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(targetIDs))
	if userID == 0 || len(targetIDs) == 0 {
		return out, nil
	}

	var found []int64
	err := l.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND "+l.targetColumn+" IN ?", userID, targetIDs).
		Pluck(l.targetColumn, &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}

// Targets pages through the user's marked targets, oldest mark first.
func (l *Ledger[T, P]) Targets(ctx context.Context, userID int64, limit, offset int) ([]int64, int64, error) {
	var total int64
	if err := l.db.WithContext(ctx).Model(new(T)).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []int64
	err := l.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ?", userID).
		Order("id ASC").
		Limit(limit).Offset(offset).
		Pluck(l.targetColumn, &ids).Error
	if err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

func (l *Ledger[T, P]) Count(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(new(T)).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
