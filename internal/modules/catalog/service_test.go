package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/database"
	"foodgram/internal/repository"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(repository.NewTagRepository(db), repository.NewProductRepository(db))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "breakfast", Slugify("Breakfast"))
	assert.Equal(t, "zavtrak", Slugify("Завтрак"))
	assert.Equal(t, "late-night-snack", Slugify("Late night snack"))
	long := Slugify("a very long tag name that overflows")
	assert.LessOrEqual(t, len(long), maxSlugLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestCreateTag(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, CreateTagRequest{Name: "Обед", Color: "#e26c2d"})
	require.NoError(t, err)
	assert.Equal(t, "obed", tag.Slug)
	assert.Equal(t, "#E26C2D", tag.Color)

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "Обед", Color: "#E26C2D"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "Dinner", Color: "red"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateIngredientUniquePerUnit(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateIngredient(ctx, CreateProductRequest{Name: "salt", MeasurementUnit: "g"})
	require.NoError(t, err)
	_, err = svc.CreateIngredient(ctx, CreateProductRequest{Name: "salt", MeasurementUnit: "pinch"})
	require.NoError(t, err)
	_, err = svc.CreateIngredient(ctx, CreateProductRequest{Name: "salt", MeasurementUnit: "g"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	_, err = svc.CreateIngredient(ctx, CreateProductRequest{Name: " ", MeasurementUnit: "g"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := setupService(t)
	ctx := context.Background()

	tag, err := svc.CreateTag(ctx, CreateTagRequest{Name: "Lunch", Color: "#49B64E"})
	require.NoError(t, err)
	for _, name := range []string{"sugar", "salt", "pepper"} {
		_, err := svc.CreateIngredient(ctx, CreateProductRequest{Name: name, MeasurementUnit: "g"})
		require.NoError(t, err)
	}

	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r.Group("/api"))

	get := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	rr := get("/api/tags")
	require.Equal(t, http.StatusOK, rr.Code)
	var tags []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "lunch", tags[0]["slug"])

	rr = get(fmt.Sprintf("/api/tags/%d", tag.ID))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, get("/api/tags/999").Code)

	rr = get("/api/ingredients?name=S")
	require.Equal(t, http.StatusOK, rr.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "salt", items[0]["name"])
	assert.Equal(t, "g", items[0]["measurement_unit"])

	assert.Equal(t, http.StatusNotFound, get("/api/ingredients/abc").Code)
}
