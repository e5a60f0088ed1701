package ledger

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes mounts every mark/unmark endpoint; all of them need a user.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := api.Group("/users", requireAuth)
	{
		users.GET("/subscriptions", h.Subscriptions)
		users.POST("/:id/subscribe", h.mark(KindFollow))
		users.DELETE("/:id/subscribe", h.unmark(KindFollow))
	}

	recipes := api.Group("/recipes", requireAuth)
	{
		recipes.POST("/:id/favorite", h.mark(KindFavorite))
		recipes.DELETE("/:id/favorite", h.unmark(KindFavorite))
		recipes.POST("/:id/shopping_cart", h.mark(KindBasket))
		recipes.DELETE("/:id/shopping_cart", h.unmark(KindBasket))
	}
}

// Subscriptions lists followed authors with their recipe previews.
// @Summary		My subscriptions
// @Tags		Users
// @Security	TokenAuth
// @Param		page			query	int	false	"Page number"
// @Param		limit			query	int	false	"Page size"
// @Param		recipes_limit	query	int	false	"Recipes per author"
// @Success		200	{object}	map[string]interface{}
// @Router		/users/subscriptions [GET]
func (h *Handler) Subscriptions(c *gin.Context) {
	recipesLimit, err := ParseRecipesLimit(c.Query("recipes_limit"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	p := pagination.FromQuery(c, h.pageSize)
	items, total, err := h.svc.Subscriptions(c.Request.Context(), c.GetInt64("user_id"), recipesLimit, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, items))
}

func (h *Handler) mark(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := targetID(c)
		if !ok {
			return
		}
		recipesLimit := AllRecipes
		if kind == KindFollow {
			var err error
			if recipesLimit, err = ParseRecipesLimit(c.Query("recipes_limit")); err != nil {
				h.writeError(c, err)
				return
			}
		}

		ctx := c.Request.Context()
		if _, err := h.svc.Mark(ctx, kind, c.GetInt64("user_id"), id); err != nil {
			h.writeError(c, err)
			return
		}

		var (
			body any
			err  error
		)
		if kind == KindFollow {
			body, err = h.svc.Subscription(ctx, id, recipesLimit)
		} else {
			body, err = h.svc.RecipePreview(ctx, id)
		}
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, body)
	}
}

func (h *Handler) unmark(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := targetID(c)
		if !ok {
			return
		}
		if err := h.svc.Unmark(c.Request.Context(), kind, c.GetInt64("user_id"), id); err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRecipesLimit):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, err.Error(),
			gin.H{"recipes_limit": []string{err.Error()}})
	case errors.Is(err, ErrSelfFollow), errors.Is(err, ErrDuplicate):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, ErrTargetNotFound), errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		h.log.Errorw("ledger request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
	}
}

func targetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, ErrTargetNotFound.Error())
		return 0, false
	}
	return id, true
}
