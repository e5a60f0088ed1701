package domain

import "time"

const (
	MinCookingTime     = 1
	MinComponentAmount = 1
	MaxTitleLength     = 200
	MaxTextLength      = 3000
)

// Recipe is the aggregate root: it owns its components and tag links.
type Recipe struct {
	ID          int64     `gorm:"primaryKey"`
	AuthorID    int64     `gorm:"not null;index;uniqueIndex:idx_recipe_author_title"`
	Title       string    `gorm:"size:200;not null;uniqueIndex:idx_recipe_author_title"`
	Image       string    `gorm:"not null"`
	Text        string    `gorm:"size:3000;not null"`
	CookingTime int       `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1"`
	PubDate     time.Time `gorm:"autoCreateTime;index;<-:create"`

	Author     *User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags       []Tag       `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Components []Component `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string { return "recipes" }

// Component is one ingredient line of a recipe.
type Component struct {
	ID        int64 `gorm:"primaryKey"`
	RecipeID  int64 `gorm:"not null;index;uniqueIndex:idx_component_recipe_product"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_component_recipe_product"`
	Amount    int   `gorm:"not null;check:chk_component_amount,amount >= 1"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Component) TableName() string { return "components" }

// ShoppingItem is one aggregated line of a user's shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}
