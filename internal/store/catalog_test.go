package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestCreateSingleCreatesAlbumAndSongTogether(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO albums (title, release_date, cover_url, artist_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`)).
		WithArgs("Windowlicker", sqlmock.AnyArg(), "/media/cover.png", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO songs (title, audio_url, duration_minutes, duration_seconds, album_id, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, uploaded_at
	`)).
		WithArgs("Windowlicker", "/media/track.mp3", 6, 7, int64(20), int64(2), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(int64(30), now))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO song_artists (song_id, artist_id, role)
		VALUES ($1, $2, $3)
	`)).
		WithArgs(int64(30), int64(7), "Primary").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	detail, err := s.CreateSingle(context.Background(), "Windowlicker", 7, 6, 7, "/media/track.mp3", "/media/cover.png", 2)
	if err != nil {
		t.Fatalf("CreateSingle error: %v", err)
	}

	if detail.ID != 20 {
		t.Fatalf("expected album ID 20, got %d", detail.ID)
	}
	if len(detail.Songs) != 1 || detail.Songs[0].ID != 30 {
		t.Fatalf("expected one song with ID 30, got %+v", detail.Songs)
	}
	if detail.Songs[0].AlbumID != 20 {
		t.Fatalf("expected song linked to the new album, got %d", detail.Songs[0].AlbumID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSingleRollsBackOnSongFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// If the song insert fails, the album insert is rolled back with it:
	// no orphan albums.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO albums`)).
		WithArgs("Broken", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO songs`)).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = s.CreateSingle(context.Background(), "Broken", 7, 3, 0, "/media/x.mp3", "", 2)
	if err == nil {
		t.Fatal("expected error from failed song insert")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAlbumMissingArtist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO albums`)).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err = s.CreateAlbum(context.Background(), "Orphan", 999, nil, "")
	if !errors.Is(err, ErrArtistNotFound) {
		t.Fatalf("expected ErrArtistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSongValidatesDuration(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	if _, err := s.CreateSong(context.Background(), "Bad", 1, 3, 75, "", 1, nil); err == nil {
		t.Fatal("expected error for seconds out of range")
	}
	if _, err := s.CreateSong(context.Background(), "   ", 1, 3, 10, "", 1, nil); err == nil {
		t.Fatal("expected error for blank title")
	}
}
