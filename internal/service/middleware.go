package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	accessTokenKey  = "accessToken"
	apiKeyKey       = "apiKey"
	requestIDKey    = "requestId"
	requestIDHeader = "X-Request-ID"
)

// CredentialsMiddleware moves the caller's credentials out of the request
// before anything logs it. The Spotify token comes from "Authorization:
// Bearer" or the access_token query parameter, the API key from X-API-Key or
// the api_key query parameter. Both are stored on the gin context and removed
// from the headers and the raw query, so the request logger and the panic
// recovery dump only ever see the redacted request.
func CredentialsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request

		token := ""
		if header := req.Header.Get("Authorization"); header != "" {
			scheme, value, ok := strings.Cut(header, " ")
			if ok && strings.EqualFold(scheme, "Bearer") {
				token = strings.TrimSpace(value)
			}
		}
		apiKey := req.Header.Get("X-API-Key")

		if req.URL.RawQuery != "" {
			query := req.URL.Query()
			if token == "" {
				token = query.Get("access_token")
			}
			if apiKey == "" {
				apiKey = query.Get("api_key")
			}
			if query.Has("access_token") || query.Has("api_key") {
				query.Del("access_token")
				query.Del("api_key")
				req.URL.RawQuery = query.Encode()
			}
		}
		req.Header.Del("Authorization")
		req.Header.Del("X-API-Key")

		if token != "" {
			c.Set(accessTokenKey, token)
		}
		if apiKey != "" {
			c.Set(apiKeyKey, apiKey)
		}
		c.Next()
	}
}

// APIKeyMiddleware rejects requests whose API key, as captured by
// CredentialsMiddleware, does not match expectedAPIKey.
func APIKeyMiddleware(expectedAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentPath := c.Request.URL.Path
		apiKey := c.GetString(apiKeyKey)

		if apiKey == "" {
			logger.Warn("API key missing",
				zap.String("path", currentPath),
				zap.String("method", c.Request.Method),
				zap.String("ip", c.ClientIP()),
				zap.String("requestId", requestID(c)),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"status":  "error",
				"message": "Please provide a valid API key in X-API-Key header or api_key query parameter",
			})
			return
		}

		if apiKey != expectedAPIKey {
			logger.Warn("Invalid API key provided",
				zap.String("path", currentPath),
				zap.String("method", c.Request.Method),
				zap.String("ip", c.ClientIP()),
				zap.String("requestId", requestID(c)),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"status":  "error",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}

// BearerTokenMiddleware requires the Spotify access token captured by
// CredentialsMiddleware. The token is forwarded to Spotify as-is; it is
// never validated here.
func BearerTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if accessToken(c) == "" {
			logger.Warn("Access token missing",
				zap.String("path", c.Request.URL.Path),
				zap.String("requestId", requestID(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Missing access token",
				"status":  "error",
				"message": "Provide a Spotify access token as 'Authorization: Bearer <token>' or the access_token query parameter",
			})
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware tags every request with an ID, reusing the caller's
// X-Request-ID when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// CORSMiddleware adds CORS headers for the read-only public API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
