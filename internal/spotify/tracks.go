package spotify

import "context"

// GetTopTracks returns the first page of the user's top tracks, using
// Spotify's default page size and time range.
func (c *Client) GetTopTracks(ctx context.Context, accessToken string) ([]Track, error) {
	return fetch(ctx, c, accessToken, request{endpoint: "top_tracks", path: "/me/top/tracks"}, toTopTracks)
}
