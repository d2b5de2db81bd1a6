package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcong315/SpotifyProfile/internal/spotify"
)

const (
	apiVersion    = "1.0.0"
	maxTopArtists = 50
)

// SpotifyClient is the subset of *spotify.Client the handlers use.
type SpotifyClient interface {
	GetUserProfile(ctx context.Context, accessToken string) (*spotify.UserProfile, error)
	GetTopTracks(ctx context.Context, accessToken string) ([]spotify.Track, error)
	GetTopArtists(ctx context.Context, accessToken string, limit int) ([]spotify.Artist, error)
	GetArtist(ctx context.Context, accessToken, artistID string) (*spotify.Artist, error)
}

type Handler struct {
	client SpotifyClient
}

func NewHandler(client SpotifyClient) *Handler {
	return &Handler{client: client}
}

func HomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Spotify Profile API",
		"version": apiVersion,
		"status":  "healthy",
	})
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) UserProfileHandler(c *gin.Context) {
	user, err := h.client.GetUserProfile(c.Request.Context(), accessToken(c))
	if err != nil {
		respondError(c, "Error getting user profile", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) TopTracksHandler(c *gin.Context) {
	tracks, err := h.client.GetTopTracks(c.Request.Context(), accessToken(c))
	if err != nil {
		respondError(c, "Error getting top tracks", err)
		return
	}
	c.JSON(http.StatusOK, tracks)
}

func (h *Handler) TopArtistsHandler(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxTopArtists {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid limit",
				"status":  "error",
				"message": "limit must be an integer between 1 and 50",
			})
			return
		}
		limit = parsed
	}

	artists, err := h.client.GetTopArtists(c.Request.Context(), accessToken(c), limit)
	if err != nil {
		respondError(c, "Error getting top artists", err)
		return
	}
	c.JSON(http.StatusOK, artists)
}

func (h *Handler) ArtistHandler(c *gin.Context) {
	artistID := c.Param("id")
	artist, err := h.client.GetArtist(c.Request.Context(), accessToken(c), artistID)
	if err != nil {
		respondError(c, "Error getting artist", err)
		return
	}
	c.JSON(http.StatusOK, artist)
}

func respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	logger.Error(msg,
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("requestId", requestID(c)))

	c.JSON(status, gin.H{
		"error":   msg,
		"status":  "error",
		"message": err.Error(),
	})
}

// statusFor maps client errors onto the status returned to the UI. Spotify's
// own 4xx/5xx codes pass through so the UI can react to expired tokens.
func statusFor(err error) int {
	var reqErr *spotify.ErrProviderRequest
	var shapeErr *spotify.ErrDataShape
	var transportErr *spotify.ErrTransport

	switch {
	case errors.As(err, &reqErr):
		if reqErr.StatusCode < http.StatusBadRequest {
			return http.StatusBadGateway
		}
		return reqErr.StatusCode
	case errors.As(err, &shapeErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.Is(err, spotify.ErrEmptyArtistID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
