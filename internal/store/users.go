package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

var (
	// ErrUserExists signals the email is already registered.
	ErrUserExists = errors.New("email already registered")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound indicates a missing user id.
	ErrUserNotFound = errors.New("user not found")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// CreateUser registers a new user on the free tier.
func (s *Store) CreateUser(ctx context.Context, email, password, displayName string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		Tier:        models.TierFree,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, subscription_tier, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, email, hash, user.DisplayName, user.Tier, time.Now().UTC()).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// VerifyCredentials validates an email/password pair and returns the user.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		user models.User
		hash []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, subscription_tier, created_at, password_hash
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &user.Tier, &user.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a comparison so missing accounts are not distinguishable by timing.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// UserByID returns a single user.
func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, subscription_tier, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.DisplayName, &user.Tier, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUser edits display name and subscription tier (back-office operation).
func (s *Store) UpdateUser(ctx context.Context, id int64, displayName string, tier models.SubscriptionTier) error {
	if tier != models.TierFree && tier != models.TierPremium {
		return fmt.Errorf("invalid subscription tier %q", tier)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = $1, subscription_tier = $2
		WHERE id = $3
	`, strings.TrimSpace(displayName), tier, id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Profile assembles a user's public view: their likes, follows, and
// playlists. Private playlists are included only for the owner.
func (s *Store) Profile(ctx context.Context, id int64, includePrivate bool) (models.Profile, error) {
	user, err := s.UserByID(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}
	profile := models.Profile{User: user}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.audio_url, s.duration_minutes, s.duration_seconds, s.album_id
		FROM songs s
		JOIN user_liked_songs l ON l.song_id = s.id
		WHERE l.user_id = $1
		ORDER BY l.liked_at DESC
	`, id)
	if err != nil {
		return models.Profile{}, fmt.Errorf("list liked songs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var song models.Song
		var audioURL sql.NullString
		if err := rows.Scan(&song.ID, &song.Title, &audioURL, &song.DurationMinutes,
			&song.DurationSeconds, &song.AlbumID); err != nil {
			return models.Profile{}, fmt.Errorf("scan liked song: %w", err)
		}
		song.AudioURL = audioURL.String
		profile.LikedSongs = append(profile.LikedSongs, song)
	}
	if err := rows.Err(); err != nil {
		return models.Profile{}, fmt.Errorf("iterate liked songs: %w", err)
	}

	albumRows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.title, a.release_date, a.cover_url, a.artist_id, ar.name
		FROM albums a
		JOIN artists ar ON ar.id = a.artist_id
		JOIN user_liked_albums l ON l.album_id = a.id
		WHERE l.user_id = $1
		ORDER BY l.liked_at DESC
	`, id)
	if err != nil {
		return models.Profile{}, fmt.Errorf("list liked albums: %w", err)
	}
	defer albumRows.Close()
	for albumRows.Next() {
		album, err := scanAlbum(albumRows)
		if err != nil {
			return models.Profile{}, err
		}
		profile.LikedAlbums = append(profile.LikedAlbums, album)
	}
	if err := albumRows.Err(); err != nil {
		return models.Profile{}, fmt.Errorf("iterate liked albums: %w", err)
	}

	artistRows, err := s.db.QueryContext(ctx, `
		SELECT ar.id, ar.name, COALESCE(ar.bio, ''), COALESCE(ar.image_url, '')
		FROM artists ar
		JOIN user_followed_artists f ON f.artist_id = ar.id
		WHERE f.user_id = $1
		ORDER BY f.followed_at DESC
	`, id)
	if err != nil {
		return models.Profile{}, fmt.Errorf("list followed artists: %w", err)
	}
	defer artistRows.Close()
	for artistRows.Next() {
		var artist models.Artist
		if err := artistRows.Scan(&artist.ID, &artist.Name, &artist.Bio, &artist.ImageURL); err != nil {
			return models.Profile{}, fmt.Errorf("scan followed artist: %w", err)
		}
		profile.FollowedArtists = append(profile.FollowedArtists, artist)
	}
	if err := artistRows.Err(); err != nil {
		return models.Profile{}, fmt.Errorf("iterate followed artists: %w", err)
	}

	playlists, err := s.ListPlaylistsByUser(ctx, id, includePrivate)
	if err != nil {
		return models.Profile{}, err
	}
	profile.Playlists = playlists

	return profile, nil
}
