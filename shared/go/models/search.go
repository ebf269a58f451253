package models

// SearchResults holds the four independent result buckets for a query.
// Membership only, no ranking.
type SearchResults struct {
	Songs     []Song     `json:"songs"`
	Albums    []Album    `json:"albums"`
	Artists   []Artist   `json:"artists"`
	Playlists []Playlist `json:"playlists"`
}
