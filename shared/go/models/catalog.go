package models

import "time"

// Artist is a performer in the catalog.
type Artist struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ArtistDetail is an artist plus their albums and follower count.
type ArtistDetail struct {
	Artist
	Albums    []Album `json:"albums"`
	Followers int     `json:"followers"`
}

// Album belongs to exactly one artist (primary credit).
type Album struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	ArtistID    int64      `json:"artist_id"`
	ArtistName  string     `json:"artist_name,omitempty"`
}

// AlbumDetail is an album plus its track listing.
type AlbumDetail struct {
	Album
	Songs []Song `json:"songs"`
}

// Song belongs to exactly one album. Duration is stored as the original
// split minute/second fields.
type Song struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	AudioURL        string       `json:"audio_url,omitempty"`
	DurationMinutes int          `json:"duration_minutes"`
	DurationSeconds int          `json:"duration_seconds"`
	AlbumID         int64        `json:"album_id"`
	AlbumTitle      string       `json:"album_title,omitempty"`
	UploadedBy      int64        `json:"uploaded_by,omitempty"`
	UploadedAt      *time.Time   `json:"uploaded_at,omitempty"`
	Credits         []SongCredit `json:"credits,omitempty"`
}

// SongCredit links a song to a credited performer with a role string.
type SongCredit struct {
	ArtistID   int64  `json:"artist_id"`
	ArtistName string `json:"artist_name"`
	Role       string `json:"role,omitempty"`
}

// TotalSeconds returns the song length normalized to seconds.
func (s Song) TotalSeconds() int {
	return s.DurationMinutes*60 + s.DurationSeconds
}
