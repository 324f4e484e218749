package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/smartscale/portfolio-api/internal/config"
	"github.com/smartscale/portfolio-api/internal/constants"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/smartscale/portfolio-api/internal/handlers"
	"github.com/smartscale/portfolio-api/internal/middleware"
	"github.com/smartscale/portfolio-api/internal/services"
	"github.com/smartscale/portfolio-api/internal/storage"
	"go.uber.org/zap"
)

// Dependencies are the constructed services the router exposes.
type Dependencies struct {
	AuthService    *services.AuthService
	ProjectService *services.ProjectService
	Assets         *storage.AssetManager
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		deps.Logger.Error("Panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		apierrors.InternalError(c, "")
	}))
	r.Use(cors.New(corsConfig(cfg.CORSOrigin)))

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Logger)
	projectHandler := handlers.NewProjectHandler(deps.ProjectService, deps.Assets.MaxSize(), deps.Logger)
	assetHandler := handlers.NewAssetHandler(deps.Assets, deps.Logger)
	requireAuth := middleware.RequireAuth(deps.AuthService, deps.Logger)

	health := handlers.Health(cfg.Environment)
	r.GET("/health", health)

	r.GET(constants.UploadURLPrefix+":name", assetHandler.Serve)

	api := r.Group("/api")
	{
		api.GET("/health", health)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify", authHandler.Verify)
			auth.POST("/change-password", authHandler.ChangePassword)
		}

		// Project routes
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListActive)
			projects.GET("/admin", requireAuth, projectHandler.ListAll)
			projects.GET("/:id", projectHandler.GetProject)
			projects.POST("", requireAuth, projectHandler.CreateProject)
			projects.PUT("/:id", requireAuth, projectHandler.UpdateProject)
			projects.DELETE("/:id", requireAuth, projectHandler.DeleteProject)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Endpoint not found")
	})

	return r
}

func corsConfig(origin string) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(origin)
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{constants.HeaderRequestID}
	corsConfig.AllowCredentials = true
	return corsConfig
}

func splitOrigins(origin string) []string {
	var origins []string
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}
