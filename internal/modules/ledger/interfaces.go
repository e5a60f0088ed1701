package ledger

import (
	"context"

	"foodgram/internal/domain"
)

// Marker is the storage side of one relation kind.
type Marker interface {
	Mark(ctx context.Context, userID, targetID int64) (domain.LedgerEntry, error)
	Unmark(ctx context.Context, userID, targetID int64) error
}

// FollowReader lists followed authors.
type FollowReader interface {
	Targets(ctx context.Context, userID int64, limit, offset int) ([]int64, int64, error)
}

type UserReader interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
}

type RecipeReader interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}
