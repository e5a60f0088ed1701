package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"foodgram/internal/pkg/pagination"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc      *Service
	pageSize int
	log      *zap.SugaredLogger
}

func NewHandler(svc *Service, pageSize int, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, pageSize: pageSize, log: log}
}

// RegisterRoutes mounts /recipes. requireAuth guards the write endpoints;
// reads are public but personalised when a user is resolved.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	recipes := api.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", h.Get)
		recipes.POST("", requireAuth, h.Create)
		recipes.PATCH("/:id", requireAuth, h.Update)
		recipes.PUT("/:id", requireAuth, h.Update)
		recipes.DELETE("/:id", requireAuth, h.Delete)
	}
}

// List returns a page of recipes.
// @Summary		List recipes
// @Tags		Recipes
// @Param		page				query	int		false	"Page number"
// @Param		limit				query	int		false	"Page size"
// @Param		tags				query	string	false	"Tag slug, repeatable"
// @Param		author				query	int		false	"Author id"
// @Param		is_favorited		query	int		false	"1 to show only favorites"
// @Param		is_in_shopping_cart	query	int		false	"1 to show only the cart"
// @Success		200	{object}	map[string]interface{}
// @Router		/recipes [GET]
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || authorID <= 0 {
			h.writeError(c, invalid("author", "author must be a user id"))
			return
		}
		q.AuthorID = authorID
	}

	p := pagination.FromQuery(c, h.pageSize)
	items, total, err := h.svc.List(c.Request.Context(), c.GetInt64("user_id"), q, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, items))
}

// Get returns one recipe.
// @Summary		Get recipe
// @Tags		Recipes
// @Param		id	path	int	true	"Recipe id"
// @Success		200	{object}	view.Recipe
// @Failure		404	{object}	map[string]interface{}
// @Router		/recipes/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Create publishes a recipe of the current user.
// @Summary		Create recipe
// @Tags		Recipes
// @Security	TokenAuth
// @Param		request	body	RecipeInput	true	"Recipe"
// @Success		201	{object}	view.Recipe
// @Failure		400	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/recipes [POST]
func (h *Handler) Create(c *gin.Context) {
	var in RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.Create(c.Request.Context(), c.GetInt64("user_id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// Update rewrites a recipe. Only its author may do that.
// @Summary		Update recipe
// @Tags		Recipes
// @Security	TokenAuth
// @Param		id		path	int			true	"Recipe id"
// @Param		request	body	RecipeInput	true	"Recipe"
// @Success		200	{object}	view.Recipe
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/recipes/{id} [PATCH]
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.Update(c.Request.Context(), c.GetInt64("user_id"), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as a text file.
// @Summary		Download shopping list
// @Tags		Recipes
// @Security	TokenAuth
// @Produce		plain
// @Success		200	{string}	string
// @Failure		400	{object}	map[string]interface{}
// @Router		/recipes/download_shopping_cart [GET]
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.svc.ShoppingList(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// bindError answers a body that does not decode. A value of the wrong JSON
// type is reported under its top-level field, like any other rule.
func bindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field, _, _ := strings.Cut(typeErr.Field, ".")
		msg := fmt.Sprintf("%s has an invalid type", field)
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, msg, gin.H{field: []string{msg}})
		return
	}
	response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, ve.Message, gin.H{ve.Field: []string{ve.Message}})
	case errors.Is(err, ErrEmptyBasket):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Recipe not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	default:
		h.log.Errorw("recipe request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Recipe not found")
		return 0, false
	}
	return id, true
}

func queryFlag(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}
