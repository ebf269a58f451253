// Package collections drives the per-user taste graph: liked songs, liked
// albums, and followed artists.
package collections

import "context"

// Store captures the junction-table operations behind the toggles.
type Store interface {
	ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error)
	ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error)
	ToggleArtistFollow(ctx context.Context, userID, artistID int64) (bool, error)
	SongLiked(ctx context.Context, userID, songID int64) (bool, error)
	AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error)
	ArtistFollowed(ctx context.Context, userID, artistID int64) (bool, error)
}

// Service exposes the like and follow toggles plus their read-side checks.
// Each toggle flips the edge and reports whether it now exists.
type Service interface {
	ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error)
	ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error)
	ToggleArtistFollow(ctx context.Context, userID, artistID int64) (bool, error)
	SongLiked(ctx context.Context, userID, songID int64) (bool, error)
	AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error)
	ArtistFollowed(ctx context.Context, userID, artistID int64) (bool, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleSongLike(ctx, userID, songID)
}

func (s *service) ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleAlbumLike(ctx, userID, albumID)
}

func (s *service) ToggleArtistFollow(ctx context.Context, userID, artistID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ToggleArtistFollow(ctx, userID, artistID)
}

func (s *service) SongLiked(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.SongLiked(ctx, userID, songID)
}

func (s *service) AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.AlbumLiked(ctx, userID, albumID)
}

func (s *service) ArtistFollowed(ctx context.Context, userID, artistID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ArtistFollowed(ctx, userID, artistID)
}
