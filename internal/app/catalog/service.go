package catalog

import (
	"context"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// Recent album count shown on the landing page.
const homeAlbumCount = 5

// Store captures the read-side catalog queries.
type Store interface {
	ArtistByID(ctx context.Context, id int64) (models.ArtistDetail, error)
	AlbumByID(ctx context.Context, id int64) (models.AlbumDetail, error)
	SongByID(ctx context.Context, id int64) (models.Song, error)
	RecentAlbums(ctx context.Context, limit int) ([]models.Album, error)
}

// Home is the landing page payload.
type Home struct {
	RecentAlbums []models.Album `json:"recent_albums"`
}

// Service provides the public catalog views.
type Service interface {
	Home(ctx context.Context) (Home, error)
	Artist(ctx context.Context, id int64) (models.ArtistDetail, error)
	Album(ctx context.Context, id int64) (models.AlbumDetail, error)
	Song(ctx context.Context, id int64) (models.Song, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Home(ctx context.Context) (Home, error) {
	if err := ctx.Err(); err != nil {
		return Home{}, err
	}
	albums, err := s.store.RecentAlbums(ctx, homeAlbumCount)
	if err != nil {
		return Home{}, err
	}
	return Home{RecentAlbums: albums}, nil
}

func (s *service) Artist(ctx context.Context, id int64) (models.ArtistDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.ArtistDetail{}, err
	}
	return s.store.ArtistByID(ctx, id)
}

func (s *service) Album(ctx context.Context, id int64) (models.AlbumDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.AlbumDetail{}, err
	}
	return s.store.AlbumByID(ctx, id)
}

func (s *service) Song(ctx context.Context, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.SongByID(ctx, id)
}
