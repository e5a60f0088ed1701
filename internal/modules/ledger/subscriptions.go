package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/view"
	"foodgram/internal/pkg/pagination"

	"gorm.io/gorm"
)

// AllRecipes disables the recipe preview limit.
const AllRecipes = -1

// ParseRecipesLimit reads the optional recipes_limit query value.
func ParseRecipesLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AllRecipes, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrInvalidRecipesLimit
	}
	return n, nil
}

// Subscriptions pages through the authors userID follows, each with a
// preview of up to recipesLimit of their newest recipes.
func (s *Service) Subscriptions(ctx context.Context, userID int64, recipesLimit int, p pagination.Params) ([]view.Subscription, int64, error) {
	authorIDs, total, err := s.follows.Targets(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, 0, err
	}

	out := make([]view.Subscription, 0, len(authors))
	for i := range authors {
		sub, err := s.subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *sub)
	}
	return out, total, nil
}

// Subscription renders a single followed author.
func (s *Service) Subscription(ctx context.Context, authorID int64, recipesLimit int) (*view.Subscription, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return s.subscription(ctx, author, recipesLimit)
}

// RecipePreview renders the short shape of a marked recipe.
func (s *Service) RecipePreview(ctx context.Context, recipeID int64) (*view.RecipeShort, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	short := view.NewRecipeShort(recipe)
	return &short, nil
}

func (s *Service) subscription(ctx context.Context, author *domain.User, recipesLimit int) (*view.Subscription, error) {
	recipes, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return &view.Subscription{
		User:         view.NewUser(author, true),
		Recipes:      view.NewRecipeShorts(recipes),
		RecipesCount: count,
	}, nil
}
