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
	// ErrArtistNotFound indicates a missing artist id.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrAlbumNotFound indicates a missing album id.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrSongNotFound indicates a missing song id.
	ErrSongNotFound = errors.New("song not found")
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row rowScanner) (models.Album, error) {
	var (
		album   models.Album
		release sql.NullTime
		cover   sql.NullString
	)
	if err := row.Scan(&album.ID, &album.Title, &release, &cover, &album.ArtistID, &album.ArtistName); err != nil {
		return models.Album{}, fmt.Errorf("scan album: %w", err)
	}
	if release.Valid {
		t := release.Time
		album.ReleaseDate = &t
	}
	album.CoverURL = cover.String
	return album, nil
}

// CreateArtist inserts a new artist row.
func (s *Store) CreateArtist(ctx context.Context, name, bio, imageURL string) (models.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Artist{}, fmt.Errorf("%w: artist name is required", ErrValidation)
	}

	artist := models.Artist{Name: name, Bio: bio, ImageURL: imageURL}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name, bio, image_url)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, nullIfEmpty(bio), nullIfEmpty(imageURL)).Scan(&artist.ID)
	if err != nil {
		return models.Artist{}, fmt.Errorf("insert artist: %w", err)
	}
	return artist, nil
}

// UpdateArtist edits an artist row.
func (s *Store) UpdateArtist(ctx context.Context, id int64, name, bio, imageURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: artist name is required", ErrValidation)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE artists
		SET name = $1, bio = $2, image_url = COALESCE($3, image_url)
		WHERE id = $4
	`, name, nullIfEmpty(bio), nullIfEmpty(imageURL), id)
	if err != nil {
		return fmt.Errorf("update artist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrArtistNotFound
	}
	return nil
}

// ArtistByID returns an artist with their albums and follower count.
func (s *Store) ArtistByID(ctx context.Context, id int64) (models.ArtistDetail, error) {
	var detail models.ArtistDetail
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, COALESCE(a.bio, ''), COALESCE(a.image_url, ''),
		       (SELECT COUNT(*) FROM user_followed_artists f WHERE f.artist_id = a.id)
		FROM artists a
		WHERE a.id = $1
	`, id).Scan(&detail.ID, &detail.Name, &detail.Bio, &detail.ImageURL, &detail.Followers)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ArtistDetail{}, ErrArtistNotFound
	}
	if err != nil {
		return models.ArtistDetail{}, fmt.Errorf("get artist: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT al.id, al.title, al.release_date, al.cover_url, al.artist_id, a.name
		FROM albums al
		JOIN artists a ON a.id = al.artist_id
		WHERE al.artist_id = $1
		ORDER BY al.release_date DESC NULLS LAST, al.id DESC
	`, id)
	if err != nil {
		return models.ArtistDetail{}, fmt.Errorf("list artist albums: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return models.ArtistDetail{}, err
		}
		detail.Albums = append(detail.Albums, album)
	}
	if err := rows.Err(); err != nil {
		return models.ArtistDetail{}, fmt.Errorf("iterate artist albums: %w", err)
	}

	return detail, nil
}

// CreateAlbum inserts a new album under an existing artist.
func (s *Store) CreateAlbum(ctx context.Context, title string, artistID int64, releaseDate *time.Time, coverURL string) (models.Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Album{}, fmt.Errorf("%w: album title is required", ErrValidation)
	}

	album := models.Album{Title: title, ArtistID: artistID, CoverURL: coverURL, ReleaseDate: releaseDate}
	var release interface{}
	if releaseDate != nil {
		release = *releaseDate
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (title, release_date, cover_url, artist_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, title, release, nullIfEmpty(coverURL), artistID).Scan(&album.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Album{}, ErrArtistNotFound
		}
		return models.Album{}, fmt.Errorf("insert album: %w", err)
	}
	return album, nil
}

// UpdateAlbum edits an album row.
func (s *Store) UpdateAlbum(ctx context.Context, id int64, title string, releaseDate *time.Time, coverURL string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: album title is required", ErrValidation)
	}
	var release interface{}
	if releaseDate != nil {
		release = *releaseDate
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE albums
		SET title = $1,
		    release_date = COALESCE($2, release_date),
		    cover_url = COALESCE($3, cover_url)
		WHERE id = $4
	`, title, release, nullIfEmpty(coverURL), id)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// AlbumByID returns an album with its track listing and song credits.
func (s *Store) AlbumByID(ctx context.Context, id int64) (models.AlbumDetail, error) {
	var detail models.AlbumDetail
	album, err := scanAlbum(s.db.QueryRowContext(ctx, `
		SELECT al.id, al.title, al.release_date, al.cover_url, al.artist_id, a.name
		FROM albums al
		JOIN artists a ON a.id = al.artist_id
		WHERE al.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AlbumDetail{}, ErrAlbumNotFound
		}
		return models.AlbumDetail{}, err
	}
	detail.Album = album

	songs, err := s.listAlbumSongs(ctx, id)
	if err != nil {
		return models.AlbumDetail{}, err
	}
	detail.Songs = songs
	return detail, nil
}

func (s *Store) listAlbumSongs(ctx context.Context, albumID int64) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, audio_url, duration_minutes, duration_seconds, album_id, uploaded_by, uploaded_at
		FROM songs
		WHERE album_id = $1
		ORDER BY id ASC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("list album songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate album songs: %w", err)
	}

	for i := range songs {
		credits, err := s.songCredits(ctx, songs[i].ID)
		if err != nil {
			return nil, err
		}
		songs[i].Credits = credits
	}
	return songs, nil
}

func scanSong(row rowScanner) (models.Song, error) {
	var (
		song     models.Song
		audioURL sql.NullString
		uploader sql.NullInt64
		uploaded sql.NullTime
	)
	if err := row.Scan(&song.ID, &song.Title, &audioURL, &song.DurationMinutes,
		&song.DurationSeconds, &song.AlbumID, &uploader, &uploaded); err != nil {
		return models.Song{}, fmt.Errorf("scan song: %w", err)
	}
	song.AudioURL = audioURL.String
	song.UploadedBy = uploader.Int64
	if uploaded.Valid {
		t := uploaded.Time
		song.UploadedAt = &t
	}
	return song, nil
}

func (s *Store) songCredits(ctx context.Context, songID int64) ([]models.SongCredit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sa.artist_id, a.name, COALESCE(sa.role, '')
		FROM song_artists sa
		JOIN artists a ON a.id = sa.artist_id
		WHERE sa.song_id = $1
		ORDER BY sa.artist_id ASC
	`, songID)
	if err != nil {
		return nil, fmt.Errorf("list song credits: %w", err)
	}
	defer rows.Close()

	var credits []models.SongCredit
	for rows.Next() {
		var credit models.SongCredit
		if err := rows.Scan(&credit.ArtistID, &credit.ArtistName, &credit.Role); err != nil {
			return nil, fmt.Errorf("scan song credit: %w", err)
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate song credits: %w", err)
	}
	return credits, nil
}

// SongCreditInput names a credited performer for a new song.
type SongCreditInput struct {
	ArtistID int64
	Role     string
}

// CreateSong inserts a song with its artist credits in one transaction.
func (s *Store) CreateSong(ctx context.Context, title string, albumID int64, durationMinutes, durationSeconds int,
	audioURL string, uploadedBy int64, credits []SongCreditInput) (models.Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Song{}, fmt.Errorf("%w: song title is required", ErrValidation)
	}
	if durationMinutes < 0 || durationSeconds < 0 || durationSeconds > 59 {
		return models.Song{}, fmt.Errorf("%w: duration %d:%d out of range", ErrValidation, durationMinutes, durationSeconds)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	song, err := insertSongTx(ctx, tx, title, albumID, durationMinutes, durationSeconds, audioURL, uploadedBy, credits)
	if err != nil {
		return models.Song{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Song{}, fmt.Errorf("commit song: %w", err)
	}
	tx = nil

	return song, nil
}

func insertSongTx(ctx context.Context, tx *sql.Tx, title string, albumID int64, durationMinutes, durationSeconds int,
	audioURL string, uploadedBy int64, credits []SongCreditInput) (models.Song, error) {
	song := models.Song{
		Title:           title,
		AudioURL:        audioURL,
		DurationMinutes: durationMinutes,
		DurationSeconds: durationSeconds,
		AlbumID:         albumID,
		UploadedBy:      uploadedBy,
	}
	var uploadedAt time.Time
	err := tx.QueryRowContext(ctx, `
		INSERT INTO songs (title, audio_url, duration_minutes, duration_seconds, album_id, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uploaded_at
	`, title, nullIfEmpty(audioURL), durationMinutes, durationSeconds, albumID, uploadedBy,
		time.Now().UTC()).Scan(&song.ID, &uploadedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Song{}, ErrAlbumNotFound
		}
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}
	song.UploadedAt = &uploadedAt

	for _, credit := range credits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO song_artists (song_id, artist_id, role)
			VALUES ($1, $2, $3)
		`, song.ID, credit.ArtistID, nullIfEmpty(credit.Role)); err != nil {
			if isForeignKeyViolation(err) {
				return models.Song{}, ErrArtistNotFound
			}
			return models.Song{}, fmt.Errorf("insert song credit: %w", err)
		}
		song.Credits = append(song.Credits, models.SongCredit{ArtistID: credit.ArtistID, Role: credit.Role})
	}
	return song, nil
}

// UpdateSong edits a song row.
func (s *Store) UpdateSong(ctx context.Context, id int64, title string, durationMinutes, durationSeconds int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: song title is required", ErrValidation)
	}
	if durationMinutes < 0 || durationSeconds < 0 || durationSeconds > 59 {
		return fmt.Errorf("%w: duration %d:%d out of range", ErrValidation, durationMinutes, durationSeconds)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE songs
		SET title = $1, duration_minutes = $2, duration_seconds = $3
		WHERE id = $4
	`, title, durationMinutes, durationSeconds, id)
	if err != nil {
		return fmt.Errorf("update song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}

// SongByID returns a song with its album title and credits.
func (s *Store) SongByID(ctx context.Context, id int64) (models.Song, error) {
	var (
		song     models.Song
		audioURL sql.NullString
		uploader sql.NullInt64
		uploaded sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.title, s.audio_url, s.duration_minutes, s.duration_seconds,
		       s.album_id, s.uploaded_by, s.uploaded_at, al.title
		FROM songs s
		JOIN albums al ON al.id = s.album_id
		WHERE s.id = $1
	`, id).Scan(&song.ID, &song.Title, &audioURL, &song.DurationMinutes, &song.DurationSeconds,
		&song.AlbumID, &uploader, &uploaded, &song.AlbumTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("get song: %w", err)
	}
	song.AudioURL = audioURL.String
	song.UploadedBy = uploader.Int64
	if uploaded.Valid {
		t := uploaded.Time
		song.UploadedAt = &t
	}

	credits, err := s.songCredits(ctx, id)
	if err != nil {
		return models.Song{}, err
	}
	song.Credits = credits
	return song, nil
}

// CreateSingle creates an album and its only song together, crediting the
// performing artist. One transaction, so a failed song insert never leaves
// an orphan album behind.
func (s *Store) CreateSingle(ctx context.Context, title string, artistID int64, durationMinutes, durationSeconds int,
	audioURL, coverURL string, uploadedBy int64) (models.AlbumDetail, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.AlbumDetail{}, fmt.Errorf("%w: single title is required", ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.AlbumDetail{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	album := models.Album{Title: title, ArtistID: artistID, CoverURL: coverURL, ReleaseDate: &today}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO albums (title, release_date, cover_url, artist_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, title, today, nullIfEmpty(coverURL), artistID).Scan(&album.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.AlbumDetail{}, ErrArtistNotFound
		}
		return models.AlbumDetail{}, fmt.Errorf("insert single album: %w", err)
	}

	song, err := insertSongTx(ctx, tx, title, album.ID, durationMinutes, durationSeconds, audioURL, uploadedBy,
		[]SongCreditInput{{ArtistID: artistID, Role: "Primary"}})
	if err != nil {
		return models.AlbumDetail{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.AlbumDetail{}, fmt.Errorf("commit single: %w", err)
	}
	tx = nil

	return models.AlbumDetail{Album: album, Songs: []models.Song{song}}, nil
}

// RecentAlbums returns the newest albums for the home view.
func (s *Store) RecentAlbums(ctx context.Context, limit int) ([]models.Album, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT al.id, al.title, al.release_date, al.cover_url, al.artist_id, a.name
		FROM albums al
		JOIN artists a ON a.id = al.artist_id
		ORDER BY al.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent albums: %w", err)
	}
	defer rows.Close()

	albums := make([]models.Album, 0)
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent albums: %w", err)
	}
	return albums, nil
}

// CatalogStats holds the counters shown on the back-office dashboard.
type CatalogStats struct {
	Artists   int `json:"artists"`
	Albums    int `json:"albums"`
	Songs     int `json:"songs"`
	Users     int `json:"users"`
	Playlists int `json:"playlists"`
}

// Stats counts the catalog for the back-office dashboard.
func (s *Store) Stats(ctx context.Context) (CatalogStats, error) {
	var stats CatalogStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM artists),
			(SELECT COUNT(*) FROM albums),
			(SELECT COUNT(*) FROM songs),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM playlists)
	`).Scan(&stats.Artists, &stats.Albums, &stats.Songs, &stats.Users, &stats.Playlists)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("catalog stats: %w", err)
	}
	return stats, nil
}

// RecentUploads lists the latest songs for the back-office dashboard.
func (s *Store) RecentUploads(ctx context.Context, limit int) ([]models.Song, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, audio_url, duration_minutes, duration_seconds, album_id, uploaded_by, uploaded_at
		FROM songs
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent uploads: %w", err)
	}
	defer rows.Close()

	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent uploads: %w", err)
	}
	return songs, nil
}
