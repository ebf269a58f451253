package playlists

import (
	"context"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, ownerID int64, name, description string, isPublic bool) (models.Playlist, error)
	DeletePlaylist(ctx context.Context, requesterID, playlistID int64) error
	AddSongToPlaylist(ctx context.Context, requesterID, playlistID, songID int64) error
	RemoveSongFromPlaylist(ctx context.Context, requesterID, playlistID, songID int64) error
	PlaylistByID(ctx context.Context, requesterID, playlistID int64) (models.PlaylistDetail, error)
	ListPlaylistsByUser(ctx context.Context, userID int64, includePrivate bool) ([]models.Playlist, error)
}

// Service coordinates playlist operations. Ownership and the free-tier
// quota are enforced in the store, inside the same transactions that
// mutate the rows.
type Service interface {
	Create(ctx context.Context, ownerID int64, name, description string, isPublic bool) (models.Playlist, error)
	Delete(ctx context.Context, requesterID, playlistID int64) error
	AddSong(ctx context.Context, requesterID, playlistID, songID int64) error
	RemoveSong(ctx context.Context, requesterID, playlistID, songID int64) error
	Get(ctx context.Context, requesterID, playlistID int64) (models.PlaylistDetail, error)
	ListMine(ctx context.Context, userID int64) ([]models.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, ownerID int64, name, description string, isPublic bool) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, ownerID, name, description, isPublic)
}

func (s *service) Delete(ctx context.Context, requesterID, playlistID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, requesterID, playlistID)
}

func (s *service) AddSong(ctx context.Context, requesterID, playlistID, songID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.AddSongToPlaylist(ctx, requesterID, playlistID, songID)
}

func (s *service) RemoveSong(ctx context.Context, requesterID, playlistID, songID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemoveSongFromPlaylist(ctx, requesterID, playlistID, songID)
}

func (s *service) Get(ctx context.Context, requesterID, playlistID int64) (models.PlaylistDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.PlaylistDetail{}, err
	}
	return s.store.PlaylistByID(ctx, requesterID, playlistID)
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylistsByUser(ctx, userID, true)
}
