package spotify

// Image describes one rendition of a picture. Width and Height are nil when
// Spotify did not report dimensions.
type Image struct {
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

type Followers struct {
	Href  *string `json:"href"`
	Total int     `json:"total"`
}

type UserProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Followers   Followers `json:"followers"`
	Images      []Image   `json:"images"`
	Href        string    `json:"href"`
}

// Artist is also used for the simplified artist objects nested in tracks and
// albums. Those carry no pictures, so Images is empty for them.
type Artist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Images       []Image           `json:"images"`
	Type         string            `json:"type"`
	URI          string            `json:"uri"`
	ExternalURLs map[string]string `json:"externalUrls,omitempty"`
}

type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ReleaseDate string   `json:"releaseDate"`
	TotalTracks int      `json:"totalTracks"`
	Images      []Image  `json:"images"`
	Type        string   `json:"type"`
	URI         string   `json:"uri"`
	Artists     []Artist `json:"artists"`
}

type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []Artist          `json:"artists"`
	Album        Album             `json:"album"`
	DurationMS   int               `json:"durationMs"`
	Explicit     bool              `json:"explicit"`
	Popularity   int               `json:"popularity"`
	PreviewURL   *string           `json:"previewUrl"`
	Href         string            `json:"href"`
	Type         string            `json:"type"`
	URI          string            `json:"uri"`
	ExternalURLs map[string]string `json:"externalUrls,omitempty"`
}
