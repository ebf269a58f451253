// Package httpapi wires the HTTP surface to the application services. All
// endpoints speak JSON under /api/v1; the staff back office lives under
// /api/v1/admin behind its own authentication realm.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aaa123456yg/music-platform/internal/app/admin"
	"github.com/aaa123456yg/music-platform/internal/app/catalog"
	"github.com/aaa123456yg/music-platform/internal/app/users"
	"github.com/aaa123456yg/music-platform/internal/auth"
	"github.com/aaa123456yg/music-platform/internal/store"
	"github.com/aaa123456yg/music-platform/internal/uploads"
	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// UserService captures the account workflows needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, email, password, displayName string) (users.Session, error)
	Login(ctx context.Context, email, password string) (users.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (int64, error)
	Profile(ctx context.Context, requesterID, userID int64) (models.Profile, error)
}

// CatalogService exposes the public catalog views.
type CatalogService interface {
	Home(ctx context.Context) (catalog.Home, error)
	Artist(ctx context.Context, id int64) (models.ArtistDetail, error)
	Album(ctx context.Context, id int64) (models.AlbumDetail, error)
	Song(ctx context.Context, id int64) (models.Song, error)
}

// CollectionService exposes the like and follow toggles and their
// read-side checks.
type CollectionService interface {
	ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error)
	ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error)
	ToggleArtistFollow(ctx context.Context, userID, artistID int64) (bool, error)
	SongLiked(ctx context.Context, userID, songID int64) (bool, error)
	AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error)
	ArtistFollowed(ctx context.Context, userID, artistID int64) (bool, error)
}

// PlaylistService coordinates playlist operations.
type PlaylistService interface {
	Create(ctx context.Context, ownerID int64, name, description string, isPublic bool) (models.Playlist, error)
	Delete(ctx context.Context, requesterID, playlistID int64) error
	AddSong(ctx context.Context, requesterID, playlistID, songID int64) error
	RemoveSong(ctx context.Context, requesterID, playlistID, songID int64) error
	Get(ctx context.Context, requesterID, playlistID int64) (models.PlaylistDetail, error)
	ListMine(ctx context.Context, userID int64) ([]models.Playlist, error)
}

// SearchService answers cross-entity search requests.
type SearchService interface {
	Search(ctx context.Context, query string, requesterID int64) (models.SearchResults, error)
}

// AdminService exposes the staff back-office workflows.
type AdminService interface {
	Login(ctx context.Context, name, password string) (admin.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (int64, error)
	Dashboard(ctx context.Context, staffID int64) (admin.Dashboard, error)
	CreateArtist(ctx context.Context, name, bio string, image *admin.Upload) (models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, name, bio string, image *admin.Upload) error
	CreateAlbum(ctx context.Context, title string, artistID int64, releaseDate *time.Time, cover *admin.Upload) (models.Album, error)
	UpdateAlbum(ctx context.Context, id int64, title string, releaseDate *time.Time, cover *admin.Upload) error
	CreateSong(ctx context.Context, staffID int64, in admin.SongInput) (models.Song, error)
	UpdateSong(ctx context.Context, id int64, title string, durationMinutes, durationSeconds int) error
	CreateSingle(ctx context.Context, staffID int64, in admin.SingleInput) (models.AlbumDetail, error)
	UpdateUser(ctx context.Context, id int64, displayName string, tier models.SubscriptionTier) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users       UserService
	catalog     CatalogService
	collections CollectionService
	playlists   PlaylistService
	search      SearchService
	admin       AdminService
}

// New configures a Server with the given services.
func New(
	users UserService,
	catalog CatalogService,
	collections CollectionService,
	playlists PlaylistService,
	search SearchService,
	admin AdminService,
) *Server {
	return &Server{
		users:       users,
		catalog:     catalog,
		collections: collections,
		playlists:   playlists,
		search:      search,
		admin:       admin,
	}
}

// Routes exposes the HTTP handlers for the platform.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	// Public catalog
	mux.HandleFunc("GET /api/v1/home", s.handleHome)
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/artists/{id}", s.handleGetArtist)
	mux.HandleFunc("GET /api/v1/albums/{id}", s.handleGetAlbum)
	mux.HandleFunc("GET /api/v1/songs/{id}", s.handleGetSong)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleGetUserProfile)

	// Likes and follows
	mux.HandleFunc("POST /api/v1/songs/{id}/like", s.handleToggleSongLike)
	mux.HandleFunc("POST /api/v1/albums/{id}/like", s.handleToggleAlbumLike)
	mux.HandleFunc("POST /api/v1/artists/{id}/follow", s.handleToggleArtistFollow)
	mux.HandleFunc("GET /api/v1/songs/{id}/like", s.handleSongLiked)
	mux.HandleFunc("GET /api/v1/albums/{id}/like", s.handleAlbumLiked)
	mux.HandleFunc("GET /api/v1/artists/{id}/follow", s.handleArtistFollowed)

	// Playlists
	mux.HandleFunc("POST /api/v1/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}", s.handleDeletePlaylist)
	mux.HandleFunc("POST /api/v1/playlists/{id}/songs", s.handleAddPlaylistSong)
	mux.HandleFunc("DELETE /api/v1/playlists/{id}/songs/{songID}", s.handleRemovePlaylistSong)
	mux.HandleFunc("GET /api/v1/me/playlists", s.handleMyPlaylists)

	// Staff back office
	mux.HandleFunc("POST /api/v1/admin/login", s.handleAdminLogin)
	mux.HandleFunc("POST /api/v1/admin/logout", s.handleAdminLogout)
	mux.HandleFunc("GET /api/v1/admin/dashboard", s.handleAdminDashboard)
	mux.HandleFunc("POST /api/v1/admin/artists", s.handleAdminCreateArtist)
	mux.HandleFunc("PUT /api/v1/admin/artists/{id}", s.handleAdminUpdateArtist)
	mux.HandleFunc("POST /api/v1/admin/albums", s.handleAdminCreateAlbum)
	mux.HandleFunc("PUT /api/v1/admin/albums/{id}", s.handleAdminUpdateAlbum)
	mux.HandleFunc("POST /api/v1/admin/songs", s.handleAdminCreateSong)
	mux.HandleFunc("PUT /api/v1/admin/songs/{id}", s.handleAdminUpdateSong)
	mux.HandleFunc("POST /api/v1/admin/singles", s.handleAdminCreateSingle)
	mux.HandleFunc("PUT /api/v1/admin/users/{id}", s.handleAdminUpdateUser)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// requireUser resolves the request's bearer token to a user ID, writing the
// 401 itself when authentication fails.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return 0, false
	}
	userID, err := s.users.Authenticate(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
		return 0, false
	}
	return userID, true
}

// optionalUser resolves the bearer token when one is present. Anonymous
// requests get ID zero, which matches no playlist owner.
func (s *Server) optionalUser(r *http.Request) int64 {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return 0
	}
	userID, err := s.users.Authenticate(r.Context(), token)
	if err != nil {
		return 0
	}
	return userID
}

// requireStaff resolves the request's bearer token against the staff realm.
func (s *Server) requireStaff(w http.ResponseWriter, r *http.Request) (int64, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return 0, false
	}
	staffID, err := s.admin.Authenticate(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
		return 0, false
	}
	return staffID, true
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials),
		errors.Is(err, store.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrStaffNotFound),
		errors.Is(err, store.ErrArtistNotFound),
		errors.Is(err, store.ErrAlbumNotFound),
		errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, uploads.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
