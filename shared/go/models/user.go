package models

import "time"

// SubscriptionTier gates feature quotas such as the playlist cap.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// User is an end-user account. The password hash never leaves the store.
type User struct {
	ID          int64            `json:"id"`
	Email       string           `json:"email"`
	DisplayName string           `json:"display_name"`
	Tier        SubscriptionTier `json:"subscription_tier"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Profile is the public view of a user plus their collections.
type Profile struct {
	User            User       `json:"user"`
	LikedSongs      []Song     `json:"liked_songs"`
	LikedAlbums     []Album    `json:"liked_albums"`
	FollowedArtists []Artist   `json:"followed_artists"`
	Playlists       []Playlist `json:"playlists"`
}

// Staff is a back-office account. Staff authenticate in their own realm
// and never gain end-user privileges.
type Staff struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
