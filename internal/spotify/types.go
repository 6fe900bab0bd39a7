package spotify

// Profile is the subset of the /me response the aggregator uses.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Images      []Image `json:"images"`
}

// Image is a profile image entry.
type Image struct {
	URL string `json:"url"`
}

// Track is an entry from /me/top/tracks.
type Track struct {
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
}

// Artist is an entry from /me/top/artists or a track's artist list.
// Genres is only populated on top-artist responses.
type Artist struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type topTracksResponse struct {
	Items []Track `json:"items"`
}

type topArtistsResponse struct {
	Items []Artist `json:"items"`
}
