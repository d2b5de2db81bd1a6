package service

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type RouterConfig struct {
	// APIKey protects /api/v1 when set.
	APIKey string
}

func NewRouter(client SpotifyClient, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(CredentialsMiddleware())
	router.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat:   time.RFC3339,
		UTC:          true,
		DefaultLevel: zapcore.InfoLevel,
		SkipPaths:    []string{"/health"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("requestId", requestID(c))}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(CORSMiddleware())
	router.Use(func(c *gin.Context) {
		c.Header("X-API-Version", apiVersion)
		c.Next()
	})

	router.GET("/", HomeHandler)
	router.GET("/health", HealthHandler)

	api := router.Group("/api/v1")
	if cfg.APIKey != "" {
		api.Use(APIKeyMiddleware(cfg.APIKey))
	}
	api.Use(BearerTokenMiddleware())

	h := NewHandler(client)
	api.GET("/me", h.UserProfileHandler)
	api.GET("/me/top/tracks", h.TopTracksHandler)
	api.GET("/me/top/artists", h.TopArtistsHandler)
	api.GET("/artists/:id", h.ArtistHandler)

	return router
}
