package recipe

import (
	"context"

	"foodgram/internal/domain"
	"foodgram/internal/repository"
)

type RecipeRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	TitleTaken(ctx context.Context, authorID int64, title string) (bool, error)
	List(ctx context.Context, f repository.RecipeFilter, limit, offset int) ([]domain.Recipe, int64, error)
	FavoriteCounts(ctx context.Context, ids []int64) (map[int64]int64, error)
	Save(ctx context.Context, recipe *domain.Recipe, components []domain.Component, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	ShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingItem, error)
}

// ReferenceChecker reports which of the given ids exist (tags or products).
type ReferenceChecker interface {
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

// MarkReader answers "which of these targets did the user mark".
type MarkReader interface {
	Marked(ctx context.Context, userID int64, targetIDs []int64) (map[int64]bool, error)
}

type ImageStore interface {
	SaveDataURI(payload string) (string, error)
	Remove(url string) error
}
