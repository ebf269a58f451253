package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

const searchLimit = 50

// Search fans out a case-insensitive substring match across songs, albums,
// artists, and playlists. The query is embedded in an ILIKE pattern without
// escaping, so % and _ keep their wildcard meaning. Playlists are filtered
// by visibility: public ones always match, private ones only for their owner
// (requesterID 0 means anonymous). A blank query returns empty buckets.
func (s *Store) Search(ctx context.Context, query string, requesterID int64) (models.SearchResults, error) {
	results := models.SearchResults{
		Songs:     make([]models.Song, 0),
		Albums:    make([]models.Album, 0),
		Artists:   make([]models.Artist, 0),
		Playlists: make([]models.Playlist, 0),
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}
	like := "%" + query + "%"

	if err := s.searchSongs(ctx, like, &results); err != nil {
		return models.SearchResults{}, err
	}
	if err := s.searchAlbums(ctx, like, &results); err != nil {
		return models.SearchResults{}, err
	}
	if err := s.searchArtists(ctx, like, &results); err != nil {
		return models.SearchResults{}, err
	}
	if err := s.searchPlaylists(ctx, like, requesterID, &results); err != nil {
		return models.SearchResults{}, err
	}

	return results, nil
}

func (s *Store) searchSongs(ctx context.Context, like string, results *models.SearchResults) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.audio_url, s.duration_minutes, s.duration_seconds, s.album_id, al.title
		FROM songs s
		JOIN albums al ON al.id = s.album_id
		WHERE s.title ILIKE $1
		ORDER BY s.id ASC
		LIMIT $2
	`, like, searchLimit)
	if err != nil {
		return fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			song     models.Song
			audioURL sql.NullString
		)
		if err := rows.Scan(&song.ID, &song.Title, &audioURL, &song.DurationMinutes,
			&song.DurationSeconds, &song.AlbumID, &song.AlbumTitle); err != nil {
			return fmt.Errorf("scan song match: %w", err)
		}
		song.AudioURL = audioURL.String
		results.Songs = append(results.Songs, song)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate song matches: %w", err)
	}
	return nil
}

func (s *Store) searchAlbums(ctx context.Context, like string, results *models.SearchResults) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT al.id, al.title, al.release_date, al.cover_url, al.artist_id, a.name
		FROM albums al
		JOIN artists a ON a.id = al.artist_id
		WHERE al.title ILIKE $1
		ORDER BY al.id ASC
		LIMIT $2
	`, like, searchLimit)
	if err != nil {
		return fmt.Errorf("search albums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return err
		}
		results.Albums = append(results.Albums, album)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate album matches: %w", err)
	}
	return nil
}

func (s *Store) searchArtists(ctx context.Context, like string, results *models.SearchResults) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(bio, ''), COALESCE(image_url, '')
		FROM artists
		WHERE name ILIKE $1
		ORDER BY id ASC
		LIMIT $2
	`, like, searchLimit)
	if err != nil {
		return fmt.Errorf("search artists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var artist models.Artist
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.Bio, &artist.ImageURL); err != nil {
			return fmt.Errorf("scan artist match: %w", err)
		}
		results.Artists = append(results.Artists, artist)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate artist matches: %w", err)
	}
	return nil
}

func (s *Store) searchPlaylists(ctx context.Context, like string, requesterID int64, results *models.SearchResults) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.is_public, p.created_at, p.user_id,
		       (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id)
		FROM playlists p
		WHERE p.name ILIKE $1 AND (p.is_public OR p.user_id = $2)
		ORDER BY p.id ASC
		LIMIT $3
	`, like, requesterID, searchLimit)
	if err != nil {
		return fmt.Errorf("search playlists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			playlist    models.Playlist
			description sql.NullString
		)
		if err := rows.Scan(&playlist.ID, &playlist.Name, &description, &playlist.IsPublic,
			&playlist.CreatedAt, &playlist.UserID, &playlist.SongCount); err != nil {
			return fmt.Errorf("scan playlist match: %w", err)
		}
		playlist.Description = description.String
		results.Playlists = append(results.Playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate playlist matches: %w", err)
	}
	return nil
}
