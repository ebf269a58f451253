// Package admin backs the staff-only catalog management surface. Staff
// authenticate against their own realm; a user token never opens these
// workflows.
package admin

import (
	"context"
	"io"
	"time"

	"github.com/aaa123456yg/music-platform/internal/auth"
	"github.com/aaa123456yg/music-platform/internal/store"
	"github.com/aaa123456yg/music-platform/shared/go/models"
)

const dashboardUploadCount = 10

// Store describes the persistence operations behind the back office.
type Store interface {
	VerifyStaffCredentials(ctx context.Context, name, password string) (models.Staff, error)
	StaffByID(ctx context.Context, id int64) (models.Staff, error)
	CreateStaffSession(ctx context.Context, token string, staffID int64, expiresAt time.Time) error
	DeleteStaffSession(ctx context.Context, token string) error
	StaffIDBySession(ctx context.Context, token string) (int64, error)

	CreateArtist(ctx context.Context, name, bio, imageURL string) (models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, name, bio, imageURL string) error
	CreateAlbum(ctx context.Context, title string, artistID int64, releaseDate *time.Time, coverURL string) (models.Album, error)
	UpdateAlbum(ctx context.Context, id int64, title string, releaseDate *time.Time, coverURL string) error
	CreateSong(ctx context.Context, title string, albumID int64, durationMinutes, durationSeconds int,
		audioURL string, uploadedBy int64, credits []store.SongCreditInput) (models.Song, error)
	UpdateSong(ctx context.Context, id int64, title string, durationMinutes, durationSeconds int) error
	CreateSingle(ctx context.Context, title string, artistID int64, durationMinutes, durationSeconds int,
		audioURL, coverURL string, uploadedBy int64) (models.AlbumDetail, error)
	UpdateUser(ctx context.Context, id int64, displayName string, tier models.SubscriptionTier) error

	Stats(ctx context.Context) (store.CatalogStats, error)
	RecentUploads(ctx context.Context, limit int) ([]models.Song, error)
}

// Tokens signs and verifies staff-realm tokens.
type Tokens interface {
	Issue(accountID int64) (token string, expiresAt time.Time, err error)
	Verify(token string) (*auth.Claims, error)
}

// Media stores uploaded files and returns their public URLs.
type Media interface {
	SaveAudio(src io.Reader, originalName string) (string, error)
	SaveImage(src io.Reader, originalName string) (string, error)
}

// Session is a logged-in staff member's credential bundle.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Staff     models.Staff `json:"staff"`
}

// Dashboard is the back-office landing payload.
type Dashboard struct {
	Staff         models.Staff       `json:"staff"`
	Stats         store.CatalogStats `json:"stats"`
	RecentUploads []models.Song      `json:"recent_uploads"`
}

// Upload carries one multipart file from a handler into the media store.
// The handler owns the handle and closes it once the service call returns.
type Upload struct {
	Name string
	Data io.ReadCloser
}

// Close releases the underlying file. Safe to call on a nil upload.
func (u *Upload) Close() error {
	if u == nil || u.Data == nil {
		return nil
	}
	return u.Data.Close()
}

// SongInput describes a new song attached to an existing album.
type SongInput struct {
	Title           string
	AlbumID         int64
	DurationMinutes int
	DurationSeconds int
	Credits         []store.SongCreditInput
	Audio           *Upload
}

// SingleInput describes a one-song release. The album and song are created
// together.
type SingleInput struct {
	Title           string
	ArtistID        int64
	DurationMinutes int
	DurationSeconds int
	Audio           *Upload
	Cover           *Upload
}

// Service exposes the staff back-office workflows.
type Service interface {
	Login(ctx context.Context, name, password string) (Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (int64, error)
	Dashboard(ctx context.Context, staffID int64) (Dashboard, error)

	CreateArtist(ctx context.Context, name, bio string, image *Upload) (models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, name, bio string, image *Upload) error
	CreateAlbum(ctx context.Context, title string, artistID int64, releaseDate *time.Time, cover *Upload) (models.Album, error)
	UpdateAlbum(ctx context.Context, id int64, title string, releaseDate *time.Time, cover *Upload) error
	CreateSong(ctx context.Context, staffID int64, in SongInput) (models.Song, error)
	UpdateSong(ctx context.Context, id int64, title string, durationMinutes, durationSeconds int) error
	CreateSingle(ctx context.Context, staffID int64, in SingleInput) (models.AlbumDetail, error)
	UpdateUser(ctx context.Context, id int64, displayName string, tier models.SubscriptionTier) error
}

type service struct {
	store  Store
	tokens Tokens
	media  Media
}

// New wires a Service from its store, staff token manager, and media saver.
func New(store Store, tokens Tokens, media Media) Service {
	return &service{store: store, tokens: tokens, media: media}
}

func (s *service) Login(ctx context.Context, name, password string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	staff, err := s.store.VerifyStaffCredentials(ctx, name, password)
	if err != nil {
		return Session{}, err
	}
	token, expiresAt, err := s.tokens.Issue(staff.ID)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.CreateStaffSession(ctx, token, staff.ID, expiresAt); err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteStaffSession(ctx, token)
}

// Authenticate resolves a bearer token to a staff ID, rejecting user-realm
// tokens outright.
func (s *service) Authenticate(ctx context.Context, token string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := s.tokens.Verify(token); err != nil {
		return 0, err
	}
	return s.store.StaffIDBySession(ctx, token)
}

func (s *service) Dashboard(ctx context.Context, staffID int64) (Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}
	staff, err := s.store.StaffByID(ctx, staffID)
	if err != nil {
		return Dashboard{}, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	uploads, err := s.store.RecentUploads(ctx, dashboardUploadCount)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Staff: staff, Stats: stats, RecentUploads: uploads}, nil
}

func (s *service) CreateArtist(ctx context.Context, name, bio string, image *Upload) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	imageURL, err := s.saveImage(image)
	if err != nil {
		return models.Artist{}, err
	}
	return s.store.CreateArtist(ctx, name, bio, imageURL)
}

func (s *service) UpdateArtist(ctx context.Context, id int64, name, bio string, image *Upload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	imageURL, err := s.saveImage(image)
	if err != nil {
		return err
	}
	return s.store.UpdateArtist(ctx, id, name, bio, imageURL)
}

func (s *service) CreateAlbum(ctx context.Context, title string, artistID int64, releaseDate *time.Time, cover *Upload) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	coverURL, err := s.saveImage(cover)
	if err != nil {
		return models.Album{}, err
	}
	return s.store.CreateAlbum(ctx, title, artistID, releaseDate, coverURL)
}

func (s *service) UpdateAlbum(ctx context.Context, id int64, title string, releaseDate *time.Time, cover *Upload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	coverURL, err := s.saveImage(cover)
	if err != nil {
		return err
	}
	return s.store.UpdateAlbum(ctx, id, title, releaseDate, coverURL)
}

func (s *service) CreateSong(ctx context.Context, staffID int64, in SongInput) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	audioURL, err := s.saveAudio(in.Audio)
	if err != nil {
		return models.Song{}, err
	}
	return s.store.CreateSong(ctx, in.Title, in.AlbumID, in.DurationMinutes, in.DurationSeconds,
		audioURL, staffID, in.Credits)
}

func (s *service) UpdateSong(ctx context.Context, id int64, title string, durationMinutes, durationSeconds int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.UpdateSong(ctx, id, title, durationMinutes, durationSeconds)
}

// CreateSingle stores the media first, then creates the album and song in
// one transaction.
func (s *service) CreateSingle(ctx context.Context, staffID int64, in SingleInput) (models.AlbumDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.AlbumDetail{}, err
	}
	audioURL, err := s.saveAudio(in.Audio)
	if err != nil {
		return models.AlbumDetail{}, err
	}
	coverURL, err := s.saveImage(in.Cover)
	if err != nil {
		return models.AlbumDetail{}, err
	}
	return s.store.CreateSingle(ctx, in.Title, in.ArtistID, in.DurationMinutes, in.DurationSeconds,
		audioURL, coverURL, staffID)
}

func (s *service) UpdateUser(ctx context.Context, id int64, displayName string, tier models.SubscriptionTier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.UpdateUser(ctx, id, displayName, tier)
}

func (s *service) saveAudio(upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	return s.media.SaveAudio(upload.Data, upload.Name)
}

func (s *service) saveImage(upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	return s.media.SaveImage(upload.Data, upload.Name)
}
