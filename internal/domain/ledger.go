package domain

import "time"

// LedgerEntry is the stored (user, target) pair shared by follows,
// favorites and basket rows.
type LedgerEntry struct {
	ID        int64
	UserID    int64
	TargetID  int64
	CreatedAt time.Time
}

// Follow is a subscription of User to Author.
type Follow struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	AuthorID  int64     `gorm:"not null;uniqueIndex:idx_follow_user_author;check:chk_follow_not_self,user_id <> author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string { return "follows" }

func (f *Follow) Entry() LedgerEntry {
	return LedgerEntry{ID: f.ID, UserID: f.UserID, TargetID: f.AuthorID, CreatedAt: f.CreatedAt}
}

// FavourRecipe marks a recipe as a favorite of the user.
type FavourRecipe struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_favour_user_recipe"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:idx_favour_user_recipe"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (FavourRecipe) TableName() string { return "favour_recipes" }

func (f *FavourRecipe) Entry() LedgerEntry {
	return LedgerEntry{ID: f.ID, UserID: f.UserID, TargetID: f.RecipeID, CreatedAt: f.CreatedAt}
}

// Basket puts a recipe into the user's shopping cart.
type Basket struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_basket_user_recipe"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:idx_basket_user_recipe"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Basket) TableName() string { return "baskets" }

func (b *Basket) Entry() LedgerEntry {
	return LedgerEntry{ID: b.ID, UserID: b.UserID, TargetID: b.RecipeID, CreatedAt: b.CreatedAt}
}

// Models lists every persistent type in migration order.
func Models() []any {
	return []any{
		&User{},
		&AuthToken{},
		&Tag{},
		&Product{},
		&Recipe{},
		&Component{},
		&Follow{},
		&FavourRecipe{},
		&Basket{},
	}
}
