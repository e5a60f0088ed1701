package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.SugaredLogger
}

func NewHandler(service *Service, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the read-only reference data endpoints. Lists are
// not paginated.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tags := api.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}

	ingredients := api.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

// ListTags returns every tag ordered by name.
// @Summary		List tags
// @Tags		Catalog
// @Success		200	{array}	domain.Tag
// @Router		/tags [GET]
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

func (h *Handler) GetTag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeError(c, ErrTagNotFound)
		return
	}
	tag, err := h.service.GetTag(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// ListIngredients searches ingredients by name prefix.
// @Summary		Search ingredients
// @Tags		Catalog
// @Param		name	query	string	false	"Name prefix, case-insensitive"
// @Success		200	{array}	domain.Product
// @Router		/ingredients [GET]
func (h *Handler) ListIngredients(c *gin.Context) {
	items, err := h.service.SearchIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) GetIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeError(c, ErrIngredientNotFound)
		return
	}
	item, err := h.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTagNotFound), errors.Is(err, ErrIngredientNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		h.log.Errorw("catalog request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
	}
}
