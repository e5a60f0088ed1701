package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"foodgram/internal/domain"
)

// checkedInput is a payload that passed every rule.
type checkedInput struct {
	title       string
	text        string
	cookingTime int
	tagIDs      []int64
	components  []domain.Component
}

// validate applies the payload rules in order and stops at the first
// failure. Title uniqueness is checked by the caller, create only.
func (s *Service) validate(ctx context.Context, in RecipeInput) (*checkedInput, error) {
	cookingTime, err := positiveInt(in.CookingTime)
	if err != nil || cookingTime < domain.MinCookingTime {
		return nil, invalid("cooking_time", fmt.Sprintf("cooking time must be an integer of at least %d minute", domain.MinCookingTime))
	}

	tagIDs, err := s.validateTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	components, err := s.validateIngredients(ctx, in.Ingredients)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Name)
	switch {
	case title == "":
		return nil, invalid("name", "name is required")
	case utf8.RuneCountInString(title) > domain.MaxTitleLength:
		return nil, invalid("name", fmt.Sprintf("name must be at most %d characters", domain.MaxTitleLength))
	}

	text := strings.TrimSpace(in.Text)
	switch {
	case text == "":
		return nil, invalid("text", "text is required")
	case utf8.RuneCountInString(text) > domain.MaxTextLength:
		return nil, invalid("text", fmt.Sprintf("text must be at most %d characters", domain.MaxTextLength))
	}

	return &checkedInput{
		title:       title,
		text:        text,
		cookingTime: cookingTime,
		tagIDs:      tagIDs,
		components:  components,
	}, nil
}

func (s *Service) validateTags(ctx context.Context, raw []Number) ([]int64, error) {
	if len(raw) == 0 {
		return nil, invalid("tags", "at least one tag is required")
	}

	ids := make([]int64, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for _, n := range raw {
		id, err := positiveInt(n)
		if err != nil {
			return nil, invalid("tags", fmt.Sprintf("invalid tag id %q", n.String()))
		}
		if seen[int64(id)] {
			return nil, invalid("tags", "tags must not repeat")
		}
		seen[int64(id)] = true
		ids = append(ids, int64(id))
	}

	existing, err := s.tags.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !existing[id] {
			return nil, invalid("tags", fmt.Sprintf("tag %d does not exist", id))
		}
	}
	return ids, nil
}

func (s *Service) validateIngredients(ctx context.Context, raw []IngredientInput) ([]domain.Component, error) {
	if len(raw) == 0 {
		return nil, invalid("ingredients", "at least one ingredient is required")
	}

	ids := make([]int64, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for _, item := range raw {
		id, err := positiveInt(item.ID)
		if err != nil {
			return nil, invalid("ingredients", fmt.Sprintf("invalid ingredient id %q", item.ID.String()))
		}
		if seen[int64(id)] {
			return nil, invalid("ingredients", "ingredients must not repeat")
		}
		seen[int64(id)] = true
		ids = append(ids, int64(id))
	}

	existing, err := s.products.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !existing[id] {
			return nil, invalid("ingredients", fmt.Sprintf("ingredient %d does not exist", id))
		}
	}

	components := make([]domain.Component, 0, len(raw))
	for i, item := range raw {
		amount, err := positiveInt(item.Amount)
		if err != nil || amount < domain.MinComponentAmount {
			return nil, invalid("ingredients", fmt.Sprintf("amount of ingredient %d must be an integer of at least %d", ids[i], domain.MinComponentAmount))
		}
		components = append(components, domain.Component{ProductID: ids[i], Amount: amount})
	}
	return components, nil
}

// positiveInt parses a JSON number that must be a whole number > 0.
func positiveInt(n Number) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(n.String()), 10, 32)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("%d is not positive", v)
	}
	return int(v), nil
}
