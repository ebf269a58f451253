package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

var (
	// ErrPlaylistNotFound indicates a missing playlist id.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrQuotaExceeded indicates a free-tier user already owns the maximum
	// number of playlists.
	ErrQuotaExceeded = errors.New("playlist quota exceeded")
)

// FreeTierPlaylistLimit caps how many playlists a free-tier user may own.
const FreeTierPlaylistLimit = 3

// CreatePlaylist inserts a playlist owned by the given user, enforcing the
// free-tier quota inside the transaction so the count and the insert agree.
func (s *Store) CreatePlaylist(ctx context.Context, ownerID int64, name, description string, isPublic bool) (models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist name is required", ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var tier models.SubscriptionTier
	err = tx.QueryRowContext(ctx, `
		SELECT subscription_tier
		FROM users
		WHERE id = $1
	`, ownerID).Scan(&tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Playlist{}, ErrUserNotFound
		}
		return models.Playlist{}, fmt.Errorf("lookup owner tier: %w", err)
	}

	if tier == models.TierFree {
		var count int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*)
			FROM playlists
			WHERE user_id = $1
		`, ownerID).Scan(&count); err != nil {
			return models.Playlist{}, fmt.Errorf("count playlists: %w", err)
		}
		if count >= FreeTierPlaylistLimit {
			return models.Playlist{}, ErrQuotaExceeded
		}
	}

	playlist := models.Playlist{
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		UserID:      ownerID,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO playlists (name, description, is_public, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, name, description, isPublic, time.Now().UTC(), ownerID).Scan(&playlist.ID, &playlist.CreatedAt)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Playlist{}, fmt.Errorf("commit playlist create: %w", err)
	}
	tx = nil

	return playlist, nil
}

// DeletePlaylist removes an owned playlist. The playlist_songs edges go with
// it (cascade); the songs themselves are untouched.
func (s *Store) DeletePlaylist(ctx context.Context, requesterID, playlistID int64) error {
	if err := s.requirePlaylistOwner(ctx, requesterID, playlistID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM playlists
		WHERE id = $1
	`, playlistID); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// AddSongToPlaylist appends a song with the next order index. Adding a song
// already present is a no-op, leaving the existing edge and its order intact.
func (s *Store) AddSongToPlaylist(ctx context.Context, requesterID, playlistID, songID int64) error {
	if err := s.requirePlaylistOwner(ctx, requesterID, playlistID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2)
	`, playlistID, songID).Scan(&exists); err != nil {
		return fmt.Errorf("check playlist song: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id, track_order, added_at)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(track_order), 0) + 1 FROM playlist_songs WHERE playlist_id = $1),
			$3)
	`, playlistID, songID, time.Now().UTC()); err != nil {
		if isForeignKeyViolation(err) {
			return ErrSongNotFound
		}
		if isUniqueViolation(err) {
			// Concurrent add of the same song; already present is a no-op.
			return nil
		}
		return fmt.Errorf("insert playlist song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist add: %w", err)
	}
	tx = nil

	return nil
}

// RemoveSongFromPlaylist deletes the edge. Removing an absent song is a no-op.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, requesterID, playlistID, songID int64) error {
	if err := s.requirePlaylistOwner(ctx, requesterID, playlistID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID); err != nil {
		return fmt.Errorf("delete playlist song: %w", err)
	}
	return nil
}

// PlaylistByID returns a playlist with its ordered songs and aggregate
// duration. Private playlists are visible only to their owner; requesterID 0
// means anonymous.
func (s *Store) PlaylistByID(ctx context.Context, requesterID, playlistID int64) (models.PlaylistDetail, error) {
	var (
		detail      models.PlaylistDetail
		description sql.NullString
		ownerName   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.description, p.is_public, p.created_at, p.user_id, u.display_name
		FROM playlists p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, playlistID).Scan(&detail.ID, &detail.Name, &description, &detail.IsPublic,
		&detail.CreatedAt, &detail.UserID, &ownerName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlaylistDetail{}, ErrPlaylistNotFound
	}
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("get playlist: %w", err)
	}
	detail.Description = description.String
	detail.OwnerName = ownerName.String

	if !detail.IsPublic && detail.UserID != requesterID {
		return models.PlaylistDetail{}, ErrPermissionDenied
	}

	songs, err := s.listPlaylistSongs(ctx, playlistID)
	if err != nil {
		return models.PlaylistDetail{}, err
	}
	detail.Songs = songs
	detail.SongCount = len(songs)

	totalSeconds := 0
	for _, song := range songs {
		totalSeconds += song.TotalSeconds()
	}
	detail.TotalDuration = models.FormatDuration(totalSeconds)

	return detail, nil
}

// ListPlaylistsByUser returns a user's playlists, newest first. Private
// playlists are included only when includePrivate is set.
func (s *Store) ListPlaylistsByUser(ctx context.Context, userID int64, includePrivate bool) ([]models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.is_public, p.created_at, p.user_id,
		       (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id)
		FROM playlists p
		WHERE p.user_id = $1 AND (p.is_public OR $2)
		ORDER BY p.created_at DESC, p.id DESC
	`, userID, includePrivate)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]models.Playlist, 0)
	for rows.Next() {
		var (
			playlist    models.Playlist
			description sql.NullString
		)
		if err := rows.Scan(&playlist.ID, &playlist.Name, &description, &playlist.IsPublic,
			&playlist.CreatedAt, &playlist.UserID, &playlist.SongCount); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlist.Description = description.String
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

func (s *Store) listPlaylistSongs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.audio_url, s.duration_minutes, s.duration_seconds,
		       s.album_id, al.title, ps.track_order, ps.added_at
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		JOIN albums al ON al.id = s.album_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.track_order ASC, ps.added_at ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.PlaylistSong, 0)
	for rows.Next() {
		var (
			song     models.PlaylistSong
			audioURL sql.NullString
		)
		if err := rows.Scan(&song.ID, &song.Title, &audioURL, &song.DurationMinutes,
			&song.DurationSeconds, &song.AlbumID, &song.AlbumTitle, &song.TrackOrder, &song.AddedAt); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		song.AudioURL = audioURL.String
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

// requirePlaylistOwner distinguishes a missing playlist from one owned by
// someone else.
func (s *Store) requirePlaylistOwner(ctx context.Context, requesterID, playlistID int64) error {
	var ownerID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM playlists
		WHERE id = $1
	`, playlistID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	if err != nil {
		return fmt.Errorf("check playlist ownership: %w", err)
	}
	if ownerID != requesterID {
		return ErrPermissionDenied
	}
	return nil
}
