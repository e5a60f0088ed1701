package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/domain"
)

const pixelImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type suite struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:         "test",
		JWTSecret:      "test_secret_key_32_characters_min",
		JWTTTL:         time.Hour,
		TokenPepper:    "pepper",
		MediaDir:       t.TempDir(),
		MediaURL:       "/media",
		PageSize:       4,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	return &suite{t: t, router: NewRouter(cfg, db, zap.NewNop().Sugar()), db: db}
}

func (s *suite) do(method, path string, body any, auth string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *suite) register(username string) (int64, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/users", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "First",
		"last_name":  "Last",
		"password":   "secret-pass-1",
	}, "")
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		ID        int64  `json:"id"`
		AuthToken string `json:"auth_token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(s.t, out.AuthToken)
	return out.ID, "Token " + out.AuthToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	s := setupSuite(t)
	w := s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRecipeLifecycle(t *testing.T) {
	s := setupSuite(t)

	tag := &domain.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, s.db.Create(tag).Error)
	flour := &domain.Product{Name: "flour", MeasurementUnit: "g"}
	eggs := &domain.Product{Name: "eggs", MeasurementUnit: "pcs"}
	require.NoError(t, s.db.Create(flour).Error)
	require.NoError(t, s.db.Create(eggs).Error)

	annaID, anna := s.register("anna")
	_, bob := s.register("bob")

	payload := map[string]any{
		"ingredients": []map[string]any{
			{"id": flour.ID, "amount": 250},
			{"id": eggs.ID, "amount": 2},
		},
		"tags":         []int64{tag.ID},
		"image":        pixelImage,
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 15,
	}

	t.Run("create requires auth", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/recipes", payload, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var recipeID int64
	var image string
	t.Run("create", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/recipes", payload, anna)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decode(t, w)
		recipeID = int64(body["id"].(float64))
		image = body["image"].(string)
		assert.True(t, strings.HasPrefix(image, "/media/recipes/"))
		assert.Equal(t, float64(annaID), body["author"].(map[string]any)["id"])
	})

	t.Run("image is served", func(t *testing.T) {
		w := s.do(http.MethodGet, image, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("anonymous list", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/recipes?tags=breakfast", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(1), body["count"])
		first := body["results"].([]any)[0].(map[string]any)
		assert.Equal(t, false, first["is_favorited"])
	})

	t.Run("favorite and basket", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipes/%d/favorite", recipeID)
		w := s.do(http.MethodPost, path, nil, bob)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "Pancakes", decode(t, w)["name"])

		w = s.do(http.MethodPost, path, nil, bob)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", recipeID), nil, bob)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipeID), nil, bob)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["is_favorited"])
		assert.Equal(t, true, body["is_in_shopping_cart"])
		assert.Equal(t, float64(1), body["favorites_count"])
	})

	t.Run("download shopping cart", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/recipes/download_shopping_cart", nil, bob)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "* flour - 250 g")
		assert.Contains(t, w.Body.String(), "* eggs - 2 pcs")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
	})

	t.Run("subscribe", func(t *testing.T) {
		w := s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=1", annaID), nil, bob)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, true, body["is_subscribed"])
		assert.Equal(t, float64(1), body["recipes_count"])

		w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", annaID), nil, anna)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, "/api/users/subscriptions", nil, bob)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["count"])
	})

	t.Run("only the author deletes", func(t *testing.T) {
		path := fmt.Sprintf("/api/recipes/%d", recipeID)
		w := s.do(http.MethodDelete, path, nil, bob)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(http.MethodDelete, path, nil, anna)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTokenAndJWTAuth(t *testing.T) {
	s := setupSuite(t)
	_, token := s.register("carol")

	w := s.do(http.MethodPost, "/api/auth/jwt/create", map[string]string{
		"email": "carol@example.com", "password": "secret-pass-1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access := decode(t, w)["access"].(string)

	w = s.do(http.MethodGet, "/api/users/me", nil, "Bearer "+access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "carol", decode(t, w)["username"])

	w = s.do(http.MethodPost, "/api/auth/token/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
