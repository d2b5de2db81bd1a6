package spotify

import (
	"fmt"
	"maps"
)

// Provider payloads. Required scalars are pointers so that an absent key can
// be told apart from a zero value.

type rawImage struct {
	URL    *string `json:"url"`
	Width  *int    `json:"width"`
	Height *int    `json:"height"`
}

type rawFollowers struct {
	Href  *string `json:"href"`
	Total *int    `json:"total"`
}

type rawUser struct {
	ID          *string       `json:"id"`
	DisplayName *string       `json:"display_name"`
	Email       *string       `json:"email"`
	Followers   *rawFollowers `json:"followers"`
	Images      []rawImage    `json:"images"`
	Href        *string       `json:"href"`
}

type rawArtist struct {
	ID           *string           `json:"id"`
	Name         *string           `json:"name"`
	Images       []rawImage        `json:"images"`
	Type         *string           `json:"type"`
	URI          *string           `json:"uri"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type rawAlbum struct {
	ID          *string     `json:"id"`
	Name        *string     `json:"name"`
	ReleaseDate *string     `json:"release_date"`
	TotalTracks *int        `json:"total_tracks"`
	Images      []rawImage  `json:"images"`
	Type        *string     `json:"type"`
	URI         *string     `json:"uri"`
	Artists     []rawArtist `json:"artists"`
}

type rawTrack struct {
	ID           *string           `json:"id"`
	Name         *string           `json:"name"`
	Artists      []rawArtist       `json:"artists"`
	Album        *rawAlbum         `json:"album"`
	DurationMS   *int              `json:"duration_ms"`
	Explicit     *bool             `json:"explicit"`
	Popularity   *int              `json:"popularity"`
	PreviewURL   *string           `json:"preview_url"`
	Href         *string           `json:"href"`
	Type         *string           `json:"type"`
	URI          *string           `json:"uri"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// pagingResponse is the envelope of the /me/top/* endpoints. Only the first
// page is read.
type pagingResponse[T any] struct {
	Items []T `json:"items"`
}

type field struct {
	name    string
	present bool
}

func fieldPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func indexPath(prefix string, i int) string {
	return fmt.Sprintf("%s[%d]", prefix, i)
}

func require(prefix string, fields ...field) error {
	for _, f := range fields {
		if !f.present {
			return missing(fieldPath(prefix, f.name))
		}
	}
	return nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func valueOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toImages(raw []rawImage, path string) ([]Image, error) {
	images := make([]Image, 0, len(raw))
	for i, r := range raw {
		if r.URL == nil {
			return nil, missing(fieldPath(indexPath(path, i), "url"))
		}
		images = append(images, Image{
			URL:    *r.URL,
			Width:  copyInt(r.Width),
			Height: copyInt(r.Height),
		})
	}
	return images, nil
}

func toArtist(raw *rawArtist, path string) (Artist, error) {
	err := require(path,
		field{"id", raw.ID != nil},
		field{"name", raw.Name != nil},
		field{"type", raw.Type != nil},
		field{"uri", raw.URI != nil},
	)
	if err != nil {
		return Artist{}, err
	}

	images, err := toImages(raw.Images, fieldPath(path, "images"))
	if err != nil {
		return Artist{}, err
	}

	return Artist{
		ID:           *raw.ID,
		Name:         *raw.Name,
		Images:       images,
		Type:         *raw.Type,
		URI:          *raw.URI,
		ExternalURLs: maps.Clone(raw.ExternalURLs),
	}, nil
}

func toArtists(raw []rawArtist, path string) ([]Artist, error) {
	artists := make([]Artist, 0, len(raw))
	for i := range raw {
		artist, err := toArtist(&raw[i], indexPath(path, i))
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	return artists, nil
}

func toAlbum(raw *rawAlbum, path string) (Album, error) {
	err := require(path,
		field{"id", raw.ID != nil},
		field{"name", raw.Name != nil},
		field{"release_date", raw.ReleaseDate != nil},
		field{"total_tracks", raw.TotalTracks != nil},
		field{"images", raw.Images != nil},
		field{"type", raw.Type != nil},
		field{"uri", raw.URI != nil},
		field{"artists", raw.Artists != nil},
	)
	if err != nil {
		return Album{}, err
	}

	images, err := toImages(raw.Images, fieldPath(path, "images"))
	if err != nil {
		return Album{}, err
	}
	artists, err := toArtists(raw.Artists, fieldPath(path, "artists"))
	if err != nil {
		return Album{}, err
	}

	return Album{
		ID:          *raw.ID,
		Name:        *raw.Name,
		ReleaseDate: *raw.ReleaseDate,
		TotalTracks: *raw.TotalTracks,
		Images:      images,
		Type:        *raw.Type,
		URI:         *raw.URI,
		Artists:     artists,
	}, nil
}

func toTrack(raw *rawTrack, path string) (Track, error) {
	err := require(path,
		field{"id", raw.ID != nil},
		field{"name", raw.Name != nil},
		field{"artists", raw.Artists != nil},
		field{"album", raw.Album != nil},
		field{"duration_ms", raw.DurationMS != nil},
		field{"explicit", raw.Explicit != nil},
		field{"popularity", raw.Popularity != nil},
		field{"href", raw.Href != nil},
		field{"type", raw.Type != nil},
		field{"uri", raw.URI != nil},
	)
	if err != nil {
		return Track{}, err
	}

	artists, err := toArtists(raw.Artists, fieldPath(path, "artists"))
	if err != nil {
		return Track{}, err
	}
	album, err := toAlbum(raw.Album, fieldPath(path, "album"))
	if err != nil {
		return Track{}, err
	}

	return Track{
		ID:           *raw.ID,
		Name:         *raw.Name,
		Artists:      artists,
		Album:        album,
		DurationMS:   *raw.DurationMS,
		Explicit:     *raw.Explicit,
		Popularity:   *raw.Popularity,
		PreviewURL:   copyString(raw.PreviewURL),
		Href:         *raw.Href,
		Type:         *raw.Type,
		URI:          *raw.URI,
		ExternalURLs: maps.Clone(raw.ExternalURLs),
	}, nil
}

func toUserProfile(raw *rawUser) (*UserProfile, error) {
	err := require("",
		field{"id", raw.ID != nil},
		field{"followers", raw.Followers != nil},
		field{"images", raw.Images != nil},
		field{"href", raw.Href != nil},
	)
	if err != nil {
		return nil, err
	}
	if raw.Followers.Total == nil {
		return nil, missing("followers.total")
	}

	images, err := toImages(raw.Images, "images")
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		ID:          *raw.ID,
		DisplayName: valueOr(raw.DisplayName),
		Email:       valueOr(raw.Email),
		Followers: Followers{
			Href:  copyString(raw.Followers.Href),
			Total: *raw.Followers.Total,
		},
		Images: images,
		Href:   *raw.Href,
	}, nil
}

func toTopTracks(page *pagingResponse[rawTrack]) ([]Track, error) {
	if page.Items == nil {
		return nil, missing("items")
	}
	tracks := make([]Track, 0, len(page.Items))
	for i := range page.Items {
		track, err := toTrack(&page.Items[i], indexPath("items", i))
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func toTopArtists(page *pagingResponse[rawArtist]) ([]Artist, error) {
	if page.Items == nil {
		return nil, missing("items")
	}
	return toArtists(page.Items, "items")
}

func toSingleArtist(raw *rawArtist) (*Artist, error) {
	artist, err := toArtist(raw, "")
	if err != nil {
		return nil, err
	}
	return &artist, nil
}
