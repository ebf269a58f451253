package models

import (
	"fmt"
	"time"
)

// Playlist is a user-owned, ordered song collection.
type Playlist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      int64     `json:"user_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	SongCount   int       `json:"song_count"`
}

// PlaylistSong is one ordered entry in a playlist.
type PlaylistSong struct {
	Song
	TrackOrder int       `json:"track_order"`
	AddedAt    time.Time `json:"added_at"`
}

// PlaylistDetail is a playlist with its ordered songs and aggregate length.
type PlaylistDetail struct {
	Playlist
	Songs         []PlaylistSong `json:"songs"`
	TotalDuration string         `json:"total_duration"`
}

// FormatDuration renders a second count as minutes:seconds.
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}
