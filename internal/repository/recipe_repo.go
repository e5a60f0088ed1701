package repository

import (
	"context"
	"errors"

	"foodgram/internal/database"
	"foodgram/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingReference is returned from Save when a tag or product vanished
// between validation and the write.
var ErrMissingReference = errors.New("referenced tag or product does not exist")

// RecipeFilter narrows List. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64
	InBasketOf  int64
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Components", func(db *gorm.DB) *gorm.DB { return db.Order("components.id ASC") }).
		Preload("Components.Product")
}

func (r *RecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := r.preloaded(ctx).First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *RecipeRepository) TitleTaken(ctx context.Context, authorID int64, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("author_id = ? AND title = ?", authorID, title).
		Count(&count).Error
	return count > 0, err
}

// List returns one page of recipes, newest first, plus the filtered total.
func (r *RecipeRepository) List(ctx context.Context, f RecipeFilter, limit, offset int) ([]domain.Recipe, int64, error) {
	base := r.filtered(ctx, f)

	var total int64
	if err := base.Session(&gorm.Session{}).Model(&domain.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []int64
	err := base.Session(&gorm.Session{}).Model(&domain.Recipe{}).
		Order("pub_date DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []domain.Recipe{}, total, nil
	}

	var recipes []domain.Recipe
	err = r.preloaded(ctx).
		Where("id IN ?", ids).
		Order("pub_date DESC").Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *RecipeRepository) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		sub := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		q = q.Where("id IN (?)", sub)
	}
	if f.FavoritedBy != 0 {
		sub := r.db.Model(&domain.FavourRecipe{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy)
		q = q.Where("id IN (?)", sub)
	}
	if f.InBasketOf != 0 {
		sub := r.db.Model(&domain.Basket{}).Select("recipe_id").Where("user_id = ?", f.InBasketOf)
		q = q.Where("id IN (?)", sub)
	}
	return q
}

// ListByAuthor returns up to limit recipes of the author, newest first.
// A negative limit returns all of them.
func (r *RecipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").Order("id DESC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

// ImageURLs returns every stored recipe image URL.
func (r *RecipeRepository) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Pluck("image", &urls).Error
	return urls, err
}

func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// FavoriteCounts returns how many users favorited each recipe.
func (r *RecipeRepository) FavoriteCounts(ctx context.Context, ids []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		RecipeID int64
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&domain.FavourRecipe{}).
		Select("recipe_id, COUNT(*) AS total").
		Where("recipe_id IN ?", ids).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RecipeID] = row.Total
	}
	return out, nil
}

// Save writes the recipe row, replaces every component and the whole tag
// set in a single transaction. A zero recipe.ID means create; updating a
// recipe that is gone returns gorm.ErrRecordNotFound.
func (r *RecipeRepository) Save(ctx context.Context, recipe *domain.Recipe, components []domain.Component, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if recipe.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
				return err
			}
		} else {
			updates := map[string]any{
				"title":        recipe.Title,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
				"image":        recipe.Image,
			}
			res := tx.Model(&domain.Recipe{}).Where("id = ?", recipe.ID).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		productIDs := make([]int64, 0, len(components))
		for _, c := range components {
			productIDs = append(productIDs, c.ProductID)
		}
		var found int64
		if err := tx.Model(&domain.Product{}).Where("id IN ?", productIDs).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(productIDs)) {
			return ErrMissingReference
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&domain.Component{}).Error; err != nil {
			return err
		}
		rows := make([]domain.Component, len(components))
		for i, c := range components {
			rows[i] = domain.Component{RecipeID: recipe.ID, ProductID: c.ProductID, Amount: c.Amount}
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrMissingReference
			}
			return err
		}

		var tags []domain.Tag
		if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			return ErrMissingReference
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}

		recipe.Components = rows
		recipe.Tags = tags
		return nil
	})
}

// Delete removes the recipe with its components, tag links and every
// favorite/basket row pointing at it.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe := &domain.Recipe{ID: id}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		for _, model := range []any{&domain.Component{}, &domain.FavourRecipe{}, &domain.Basket{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&domain.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ShoppingList sums component amounts over every recipe in the user's
// basket, grouped by product and ordered by product name.
func (r *RecipeRepository) ShoppingList(ctx context.Context, userID int64) ([]domain.ShoppingItem, error) {
	var items []domain.ShoppingItem
	err := r.db.WithContext(ctx).
		Table("components").
		Select("products.name AS name, products.measurement_unit AS measurement_unit, SUM(components.amount) AS amount").
		Joins("JOIN products ON products.id = components.product_id").
		Joins("JOIN baskets ON baskets.recipe_id = components.recipe_id").
		Where("baskets.user_id = ?", userID).
		Group("products.name, products.measurement_unit").
		Order("products.name ASC").Order("products.measurement_unit ASC").
		Scan(&items).Error
	return items, err
}
