package spotify

import "context"

// GetUserProfile fetches the profile of the user the token belongs to.
func (c *Client) GetUserProfile(ctx context.Context, accessToken string) (*UserProfile, error) {
	return fetch(ctx, c, accessToken, request{endpoint: "user_profile", path: "/me"}, toUserProfile)
}
