package auth

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/internal/pkg/pagination"
	"foodgram/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler manages all HTTP interactions for accounts and authentication
type Handler struct {
	service  *Service
	pageSize int
	log      *zap.SugaredLogger
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service, pageSize int, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{service: service, pageSize: pageSize, log: log}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/token/login", h.TokenLogin)
		authGroup.POST("/token/logout", requireAuth, h.TokenLogout)
		authGroup.POST("/jwt/create", h.CreateJWT)
	}

	userGroup := api.Group("/users")
	{
		userGroup.POST("", h.Register)
		userGroup.GET("", h.ListUsers)
		userGroup.GET("/me", requireAuth, h.GetMe)
		userGroup.POST("/set_password", requireAuth, h.SetPassword)
		userGroup.GET("/:id", h.GetUser)
	}
}

// Register creates an account and returns it with its API token.
// @Summary		Register
// @Tags		Users
// @Param		request	body	RegisterRequest	true	"email, username, first_name, last_name, password"
// @Success		201	{object}	RegisterResponse
// @Failure		400	{object}	map[string]interface{} "Validation error or email/username already taken"
// @Router		/users [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, RegisterResponse{
		Email:     result.User.Email,
		ID:        result.User.ID,
		Username:  result.User.Username,
		FirstName: result.User.FirstName,
		LastName:  result.User.LastName,
		AuthToken: result.Token,
	})
}

// TokenLogin exchanges email and password for an API token.
// @Summary		Get API token
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success		200	{object}	TokenResponse
// @Failure		401	{object}	map[string]interface{} "Wrong email or password"
// @Failure		403	{object}	map[string]interface{} "Account is not active"
// @Router		/auth/token/login [POST]
func (h *Handler) TokenLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	token, err := h.service.TokenLogin(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, TokenResponse{AuthToken: token})
}

func (h *Handler) TokenLogout(c *gin.Context) {
	if err := h.service.TokenLogout(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateJWT issues a signed access token.
// @Summary		Get JWT
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success		200	{object}	JWTResponse
// @Router		/auth/jwt/create [POST]
func (h *Handler) CreateJWT(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}

	out, err := h.service.IssueJWT(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetMe(c *gin.Context) {
	me, err := h.service.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, me)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, ErrUserNotFound.Error())
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	p := pagination.FromQuery(c, h.pageSize)
	users, total, err := h.service.ListUsers(c.Request.Context(), c.GetInt64("user_id"), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(c, p, total, users))
}

func (h *Handler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	if err := h.service.SetPassword(c.Request.Context(), c.GetInt64("user_id"), req); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		details := make(gin.H, len(fields))
		for field, msg := range fields {
			details[field] = []string{msg}
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid input", details)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, ErrInactiveUser):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		h.log.Errorw("auth request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
	}
}
