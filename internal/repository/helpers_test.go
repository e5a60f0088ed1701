package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/database"
	"foodgram/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, unit string) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedTag(t *testing.T, db *gorm.DB, name, slug string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func seedRecipe(t *testing.T, repo *RecipeRepository, authorID int64, title string, tagIDs []int64, components ...domain.Component) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{AuthorID: authorID, Title: title, Text: "mix it", CookingTime: 10, Image: "/media/recipes/x.png"}
	require.NoError(t, repo.Save(context.Background(), r, components, tagIDs))
	return r
}
