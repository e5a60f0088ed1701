package server

import (
	"net/http"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/middleware"
	"foodgram/internal/modules/auth"
	"foodgram/internal/modules/catalog"
	"foodgram/internal/modules/ledger"
	"foodgram/internal/modules/recipe"
	"foodgram/internal/pkg/imagestore"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRouter wires repositories, services and handlers into one engine.
func NewRouter(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewAuthTokenRepository(db)
	tagRepo := repository.NewTagRepository(db)
	productRepo := repository.NewProductRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	follows := repository.NewFollowLedger(db)
	favorites := repository.NewFavoriteLedger(db)
	basket := repository.NewBasketLedger(db)

	images := imagestore.New(cfg.MediaDir, cfg.MediaURL)
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, tokenRepo, follows, j, cfg.TokenPepper, log)
	authHandler := auth.NewHandler(authService, cfg.PageSize, log)

	catalogHandler := catalog.NewHandler(catalog.NewService(tagRepo, productRepo), log)

	recipeService := recipe.NewService(recipeRepo, tagRepo, productRepo, favorites, basket, follows, images, log)
	recipeHandler := recipe.NewHandler(recipeService, cfg.PageSize, log)

	ledgerService := ledger.NewService(follows, favorites, basket, userRepo, recipeRepo, log)
	ledgerHandler := ledger.NewHandler(ledgerService, cfg.PageSize, log)

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(cfg.AllowedOrigins))

	r.GET("/healthz", healthz(db))
	if strings.HasPrefix(cfg.MediaURL, "/") {
		r.Static(cfg.MediaURL, cfg.MediaDir)
	}

	api := r.Group("/api", middleware.Authenticate(authService, log))
	requireAuth := middleware.RequireAuth()
	{
		authHandler.RegisterRoutes(api, requireAuth)
		catalogHandler.RegisterRoutes(api)
		recipeHandler.RegisterRoutes(api, requireAuth)
		ledgerHandler.RegisterRoutes(api, requireAuth)
	}

	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
