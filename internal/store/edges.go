package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Edge toggles share one shape: delete the junction row, and if nothing was
// there, insert it with the current timestamp. Exactly one row is inserted
// or deleted per call; repeated calls alternate state. The composite primary
// key makes duplicate edges impossible.

// ToggleSongLike flips the user-likes-song edge. Returns true when the call
// added the edge.
func (s *Store) ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error) {
	return s.toggleEdge(ctx, toggleSpec{
		deleteQuery: `DELETE FROM user_liked_songs WHERE user_id = $1 AND song_id = $2`,
		insertQuery: `INSERT INTO user_liked_songs (user_id, song_id, liked_at) VALUES ($1, $2, $3)`,
		missingErr:  ErrSongNotFound,
		name:        "song like",
	}, userID, songID)
}

// ToggleAlbumLike flips the user-likes-album edge.
func (s *Store) ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error) {
	return s.toggleEdge(ctx, toggleSpec{
		deleteQuery: `DELETE FROM user_liked_albums WHERE user_id = $1 AND album_id = $2`,
		insertQuery: `INSERT INTO user_liked_albums (user_id, album_id, liked_at) VALUES ($1, $2, $3)`,
		missingErr:  ErrAlbumNotFound,
		name:        "album like",
	}, userID, albumID)
}

// ToggleArtistFollow flips the user-follows-artist edge.
func (s *Store) ToggleArtistFollow(ctx context.Context, userID, artistID int64) (bool, error) {
	return s.toggleEdge(ctx, toggleSpec{
		deleteQuery: `DELETE FROM user_followed_artists WHERE user_id = $1 AND artist_id = $2`,
		insertQuery: `INSERT INTO user_followed_artists (user_id, artist_id, followed_at) VALUES ($1, $2, $3)`,
		missingErr:  ErrArtistNotFound,
		name:        "artist follow",
	}, userID, artistID)
}

type toggleSpec struct {
	deleteQuery string
	insertQuery string
	missingErr  error
	name        string
}

func (s *Store) toggleEdge(ctx context.Context, spec toggleSpec, subjectID, objectID int64) (added bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, spec.deleteQuery, subjectID, objectID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", spec.name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		if _, err := tx.ExecContext(ctx, spec.insertQuery, subjectID, objectID, time.Now().UTC()); err != nil {
			if isForeignKeyViolation(err) {
				return false, spec.missingErr
			}
			if isUniqueViolation(err) {
				// Lost a race with a concurrent toggle. The edge exists
				// either way; last write wins.
				return true, nil
			}
			return false, fmt.Errorf("insert %s: %w", spec.name, err)
		}
		added = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit %s: %w", spec.name, err)
	}
	tx = nil

	return added, nil
}

// SongLiked reports whether the edge currently exists.
func (s *Store) SongLiked(ctx context.Context, userID, songID int64) (bool, error) {
	return s.edgeExists(ctx, `SELECT EXISTS(SELECT 1 FROM user_liked_songs WHERE user_id = $1 AND song_id = $2)`, userID, songID)
}

// AlbumLiked reports whether the edge currently exists.
func (s *Store) AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error) {
	return s.edgeExists(ctx, `SELECT EXISTS(SELECT 1 FROM user_liked_albums WHERE user_id = $1 AND album_id = $2)`, userID, albumID)
}

// ArtistFollowed reports whether the edge currently exists.
func (s *Store) ArtistFollowed(ctx context.Context, userID, artistID int64) (bool, error) {
	return s.edgeExists(ctx, `SELECT EXISTS(SELECT 1 FROM user_followed_artists WHERE user_id = $1 AND artist_id = $2)`, userID, artistID)
}

func (s *Store) edgeExists(ctx context.Context, query string, subjectID, objectID int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, subjectID, objectID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check edge: %w", err)
	}
	return exists, nil
}
