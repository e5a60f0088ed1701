// Package view holds the JSON response shapes shared by several modules.
// Each endpoint picks a concrete shape; there is no runtime field selection.
package view

import "foodgram/internal/domain"

// User is the public profile of an account as seen by the viewer.
type User struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func NewUser(u *domain.User, subscribed bool) User {
	if u == nil {
		return User{}
	}
	return User{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// Ingredient is one component line: the product plus the amount.
type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Recipe is the full-detail shape.
type Recipe struct {
	ID               int64        `json:"id"`
	Tags             []domain.Tag `json:"tags"`
	Author           User         `json:"author"`
	Ingredients      []Ingredient `json:"ingredients"`
	IsFavorited      bool         `json:"is_favorited"`
	IsInShoppingCart bool         `json:"is_in_shopping_cart"`
	Name             string       `json:"name"`
	Image            string       `json:"image"`
	Text             string       `json:"text"`
	CookingTime      int          `json:"cooking_time"`
	FavoritesCount   int64        `json:"favorites_count"`
}

// RecipeShort is the preview shape used in favorites, the cart and
// subscriptions.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	User
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// Marks carries the per-viewer flags of a batch of recipes.
type Marks struct {
	Favorited      map[int64]bool
	InCart         map[int64]bool
	Subscribed     map[int64]bool
	FavoriteCounts map[int64]int64
}

func NewRecipe(r *domain.Recipe, m Marks) Recipe {
	tags := r.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}
	ingredients := make([]Ingredient, 0, len(r.Components))
	for _, c := range r.Components {
		item := Ingredient{ID: c.ProductID, Amount: c.Amount}
		if c.Product != nil {
			item.Name = c.Product.Name
			item.MeasurementUnit = c.Product.MeasurementUnit
		}
		ingredients = append(ingredients, item)
	}

	return Recipe{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewUser(r.Author, m.Subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      m.Favorited[r.ID],
		IsInShoppingCart: m.InCart[r.ID],
		Name:             r.Title,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		FavoritesCount:   m.FavoriteCounts[r.ID],
	}
}

func NewRecipeShort(r *domain.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Title, Image: r.Image, CookingTime: r.CookingTime}
}

func NewRecipeShorts(recipes []domain.Recipe) []RecipeShort {
	out := make([]RecipeShort, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipeShort(&recipes[i]))
	}
	return out
}
