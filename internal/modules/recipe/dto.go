package recipe

import (
	"bytes"
	"encoding/json"
)

// Number is a JSON scalar kept as text. Any value decodes, so a malformed
// id or amount becomes a field error instead of a body decode failure.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Number(s)
		return nil
	}
	*n = Number(data)
	return nil
}

func (n Number) String() string { return string(n) }

// IngredientInput references a product by id.
type IngredientInput struct {
	ID     Number `json:"id"`
	Amount Number `json:"amount"`
}

// RecipeInput is the create/update payload.
type RecipeInput struct {
	Ingredients []IngredientInput `json:"ingredients"`
	Tags        []Number          `json:"tags"`
	Image       string            `json:"image"`
	Name        string            `json:"name"`
	Text        string            `json:"text"`
	CookingTime Number            `json:"cooking_time"`
}

// ListQuery holds the recipe list filters as they come from the query string.
type ListQuery struct {
	Tags             []string
	AuthorID         int64
	IsFavorited      bool
	IsInShoppingCart bool
}
