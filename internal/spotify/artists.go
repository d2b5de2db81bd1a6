package spotify

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// DefaultTopArtistsLimit is sent when GetTopArtists is called with limit <= 0.
const DefaultTopArtistsLimit = 25

// ErrEmptyArtistID is returned by GetArtist before any request is made.
var ErrEmptyArtistID = errors.New("spotify: artist id is empty")

// GetTopArtists returns up to limit of the user's top artists.
func (c *Client) GetTopArtists(ctx context.Context, accessToken string, limit int) ([]Artist, error) {
	if limit <= 0 {
		limit = DefaultTopArtistsLimit
	}
	r := request{
		endpoint: "top_artists",
		path:     "/me/top/artists",
		query:    url.Values{"limit": {strconv.Itoa(limit)}},
	}
	return fetch(ctx, c, accessToken, r, toTopArtists)
}

// GetArtist looks up a single artist by Spotify ID. An empty ID is logged
// and rejected without a request, so it is not counted in the metrics.
func (c *Client) GetArtist(ctx context.Context, accessToken, artistID string) (*Artist, error) {
	if artistID == "" {
		c.logger.Error("Error fetching from Spotify", zap.String("endpoint", "artist"), zap.Error(ErrEmptyArtistID))
		return nil, ErrEmptyArtistID
	}
	r := request{
		endpoint: "artist",
		path:     "/artists/" + url.PathEscape(artistID),
	}
	return fetch(ctx, c, accessToken, r, toSingleArtist)
}
