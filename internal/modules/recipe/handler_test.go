package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/domain"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User-ID"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Set("user_id", id)
		}
		c.Next()
	})
	requireAuth := func(c *gin.Context) {
		if c.GetInt64("user_id") == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}

	NewHandler(f.svc, 1, nil).RegisterRoutes(r.Group("/api"), requireAuth)
	return r, f
}

func doJSONRequest(r http.Handler, method, path string, body any, userID int64) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRecipeEndpoints_Unauthorized(t *testing.T) {
	r, _ := setupTestRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/recipes"},
		{http.MethodPatch, "/api/recipes/1"},
		{http.MethodDelete, "/api/recipes/1"},
		{http.MethodGet, "/api/recipes/download_shopping_cart"},
	}
	for _, tc := range cases {
		rr := doJSONRequest(r, tc.method, tc.path, map[string]any{}, 0)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRecipeEndpoints_CreateListDownload(t *testing.T) {
	r, f := setupTestRouter(t)

	body := map[string]any{
		"ingredients":  []map[string]any{{"id": f.flour.ID, "amount": 100}},
		"tags":         []int64{f.lunch.ID},
		"image":        pixelImage,
		"name":         "Bread",
		"text":         "Bake it.",
		"cooking_time": 60,
	}
	rr := doJSONRequest(r, http.MethodPost, "/api/recipes", body, f.author.ID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID          int64 `json:"id"`
		Ingredients []struct {
			Name   string `json:"name"`
			Amount int    `json:"amount"`
		} `json:"ingredients"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "chef", created.Author.Username)
	require.Len(t, created.Ingredients, 1)
	assert.Equal(t, "flour", created.Ingredients[0].Name)

	body["name"] = "Rolls"
	rr = doJSONRequest(r, http.MethodPost, "/api/recipes", body, f.author.ID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSONRequest(r, http.MethodGet, "/api/recipes?tags=lunch", nil, 0)
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Count    int64            `json:"count"`
		Next     *string          `json:"next"`
		Previous *string          `json:"previous"`
		Results  []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Rolls", page.Results[0]["name"])
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Nil(t, page.Previous)

	require.NoError(t, f.db.Create(&domain.Basket{UserID: f.other.ID, RecipeID: created.ID}).Error)
	rr = doJSONRequest(r, http.MethodGet, "/api/recipes/download_shopping_cart", nil, f.other.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.Equal(t, "Shopping list\n\n* flour - 100 g\n", rr.Body.String())
}

func TestRecipeEndpoints_Errors(t *testing.T) {
	r, f := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost, "/api/recipes", map[string]any{
		"ingredients":  []any{},
		"tags":         []int64{f.lunch.ID},
		"image":        pixelImage,
		"name":         "Air",
		"text":         "Nothing.",
		"cooking_time": 1,
	}, f.author.ID)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var envelope struct {
		Error struct {
			Code    string              `json:"code"`
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Details, "ingredients")

	rr = doJSONRequest(r, http.MethodGet, "/api/recipes/4242", nil, 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/recipes?author=abc", nil, 0)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/recipes/download_shopping_cart", nil, f.other.ID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodDelete, fmt.Sprintf("/api/recipes/%d", 4242), nil, f.author.ID)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecipeEndpoints_MalformedValuesAreFieldErrors(t *testing.T) {
	r, f := setupTestRouter(t)

	valid := func() map[string]any {
		return map[string]any{
			"ingredients":  []map[string]any{{"id": f.flour.ID, "amount": 100}},
			"tags":         []int64{f.lunch.ID},
			"image":        pixelImage,
			"name":         "Bread",
			"text":         "Bake it.",
			"cooking_time": 60,
		}
	}

	cases := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{"word as cooking time", "cooking_time", "abc", "cooking_time"},
		{"bool as cooking time", "cooking_time", true, "cooking_time"},
		{"word as amount", "ingredients", []map[string]any{{"id": f.flour.ID, "amount": "lots"}}, "ingredients"},
		{"word as ingredient id", "ingredients", []map[string]any{{"id": "flour", "amount": 1}}, "ingredients"},
		{"bare number as ingredient", "ingredients", []int64{f.flour.ID}, "ingredients"},
		{"word as tag", "tags", []string{"x"}, "tags"},
		{"string instead of tag list", "tags", "x", "tags"},
		{"number as name", "name", 5, "name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := valid()
			body[tc.key] = tc.value

			rr := doJSONRequest(r, http.MethodPost, "/api/recipes", body, f.author.ID)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			var envelope struct {
				Error struct {
					Code    string              `json:"code"`
					Details map[string][]string `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
			assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
			assert.Contains(t, envelope.Error.Details, tc.field)
		})
	}

	rr := doJSONRequest(r, http.MethodPost, "/api/recipes", valid(), f.author.ID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	patch := valid()
	patch["cooking_time"] = "abc"
	rr = doJSONRequest(r, http.MethodPatch, fmt.Sprintf("/api/recipes/%d", created.ID), patch, f.author.ID)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cooking_time"`)

	quoted := valid()
	quoted["name"] = "Quoted"
	quoted["cooking_time"] = "45"
	rr = doJSONRequest(r, http.MethodPost, "/api/recipes", quoted, f.author.ID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"cooking_time":45`)
}
