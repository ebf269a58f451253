package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aaa123456yg/music-platform/internal/app/admin"
	"github.com/aaa123456yg/music-platform/internal/app/catalog"
	"github.com/aaa123456yg/music-platform/internal/app/users"
	"github.com/aaa123456yg/music-platform/internal/auth"
	"github.com/aaa123456yg/music-platform/internal/store"
	"github.com/aaa123456yg/music-platform/shared/go/models"
)

type stubUserService struct {
	session     users.Session
	registerErr error
	loginErr    error

	// Tokens accepted as user-realm credentials, mapped to user IDs.
	tokens map[string]int64

	lastEmail       string
	lastDisplayName string
	loggedOutToken  string
}

func (s *stubUserService) Register(ctx context.Context, email, password, displayName string) (users.Session, error) {
	s.lastEmail = email
	s.lastDisplayName = displayName
	if s.registerErr != nil {
		return users.Session{}, s.registerErr
	}
	return s.session, nil
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (users.Session, error) {
	s.lastEmail = email
	if s.loginErr != nil {
		return users.Session{}, s.loginErr
	}
	return s.session, nil
}

func (s *stubUserService) Logout(ctx context.Context, token string) error {
	s.loggedOutToken = token
	return nil
}

func (s *stubUserService) Authenticate(ctx context.Context, token string) (int64, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return 0, auth.ErrInvalidToken
}

func (s *stubUserService) Profile(ctx context.Context, requesterID, userID int64) (models.Profile, error) {
	return models.Profile{User: models.User{ID: userID}}, nil
}

type stubCatalogService struct {
	home      catalog.Home
	artist    models.ArtistDetail
	artistErr error
}

func (s *stubCatalogService) Home(ctx context.Context) (catalog.Home, error) {
	return s.home, nil
}

func (s *stubCatalogService) Artist(ctx context.Context, id int64) (models.ArtistDetail, error) {
	if s.artistErr != nil {
		return models.ArtistDetail{}, s.artistErr
	}
	return s.artist, nil
}

func (s *stubCatalogService) Album(ctx context.Context, id int64) (models.AlbumDetail, error) {
	return models.AlbumDetail{}, nil
}

func (s *stubCatalogService) Song(ctx context.Context, id int64) (models.Song, error) {
	return models.Song{}, nil
}

type stubCollectionService struct {
	liked     bool
	toggleErr error

	lastUserID   int64
	lastObjectID int64
}

func (s *stubCollectionService) ToggleSongLike(ctx context.Context, userID, songID int64) (bool, error) {
	s.lastUserID, s.lastObjectID = userID, songID
	return s.liked, s.toggleErr
}

func (s *stubCollectionService) ToggleAlbumLike(ctx context.Context, userID, albumID int64) (bool, error) {
	s.lastUserID, s.lastObjectID = userID, albumID
	return s.liked, s.toggleErr
}

func (s *stubCollectionService) ToggleArtistFollow(ctx context.Context, userID, artistID int64) (bool, error) {
	s.lastUserID, s.lastObjectID = userID, artistID
	return s.liked, s.toggleErr
}

func (s *stubCollectionService) SongLiked(ctx context.Context, userID, songID int64) (bool, error) {
	s.lastUserID, s.lastObjectID = userID, songID
	return s.liked, s.toggleErr
}

func (s *stubCollectionService) AlbumLiked(ctx context.Context, userID, albumID int64) (bool, error) {
	s.lastUserID, s.lastObjectID = userID, albumID
	return s.liked, s.toggleErr
}

func (s *stubCollectionService) ArtistFollowed(ctx context.Context, userID, artistID int64) (bool, error) {
	s.lastUserID, s.lastObjectID = userID, artistID
	return s.liked, s.toggleErr
}

type stubPlaylistService struct {
	created   models.Playlist
	createErr error
	detail    models.PlaylistDetail
	getErr    error
	addErr    error

	lastRequesterID int64
	lastPlaylistID  int64
	lastSongID      int64
}

func (s *stubPlaylistService) Create(ctx context.Context, ownerID int64, name, description string, isPublic bool) (models.Playlist, error) {
	s.lastRequesterID = ownerID
	if s.createErr != nil {
		return models.Playlist{}, s.createErr
	}
	return s.created, nil
}

func (s *stubPlaylistService) Delete(ctx context.Context, requesterID, playlistID int64) error {
	s.lastRequesterID, s.lastPlaylistID = requesterID, playlistID
	return nil
}

func (s *stubPlaylistService) AddSong(ctx context.Context, requesterID, playlistID, songID int64) error {
	s.lastRequesterID, s.lastPlaylistID, s.lastSongID = requesterID, playlistID, songID
	return s.addErr
}

func (s *stubPlaylistService) RemoveSong(ctx context.Context, requesterID, playlistID, songID int64) error {
	s.lastRequesterID, s.lastPlaylistID, s.lastSongID = requesterID, playlistID, songID
	return nil
}

func (s *stubPlaylistService) Get(ctx context.Context, requesterID, playlistID int64) (models.PlaylistDetail, error) {
	s.lastRequesterID, s.lastPlaylistID = requesterID, playlistID
	if s.getErr != nil {
		return models.PlaylistDetail{}, s.getErr
	}
	return s.detail, nil
}

func (s *stubPlaylistService) ListMine(ctx context.Context, userID int64) ([]models.Playlist, error) {
	s.lastRequesterID = userID
	return nil, nil
}

type stubSearchService struct {
	results models.SearchResults

	lastQuery       string
	lastRequesterID int64
}

func (s *stubSearchService) Search(ctx context.Context, query string, requesterID int64) (models.SearchResults, error) {
	s.lastQuery, s.lastRequesterID = query, requesterID
	return s.results, nil
}

type stubAdminService struct {
	session  admin.Session
	loginErr error

	// Tokens accepted as staff-realm credentials, mapped to staff IDs.
	tokens map[string]int64

	createdArtist models.Artist
	createdSingle models.AlbumDetail

	lastArtistName string
	lastSingle     admin.SingleInput
	lastStaffID    int64

	updatedUserID   int64
	updatedUserTier models.SubscriptionTier
}

func (s *stubAdminService) Login(ctx context.Context, name, password string) (admin.Session, error) {
	if s.loginErr != nil {
		return admin.Session{}, s.loginErr
	}
	return s.session, nil
}

func (s *stubAdminService) Logout(ctx context.Context, token string) error { return nil }

func (s *stubAdminService) Authenticate(ctx context.Context, token string) (int64, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return 0, auth.ErrInvalidToken
}

func (s *stubAdminService) Dashboard(ctx context.Context, staffID int64) (admin.Dashboard, error) {
	s.lastStaffID = staffID
	return admin.Dashboard{Staff: models.Staff{ID: staffID}}, nil
}

func (s *stubAdminService) CreateArtist(ctx context.Context, name, bio string, image *admin.Upload) (models.Artist, error) {
	s.lastArtistName = name
	return s.createdArtist, nil
}

func (s *stubAdminService) UpdateArtist(ctx context.Context, id int64, name, bio string, image *admin.Upload) error {
	return nil
}

func (s *stubAdminService) CreateAlbum(ctx context.Context, title string, artistID int64, releaseDate *time.Time, cover *admin.Upload) (models.Album, error) {
	return models.Album{}, nil
}

func (s *stubAdminService) UpdateAlbum(ctx context.Context, id int64, title string, releaseDate *time.Time, cover *admin.Upload) error {
	return nil
}

func (s *stubAdminService) CreateSong(ctx context.Context, staffID int64, in admin.SongInput) (models.Song, error) {
	return models.Song{}, nil
}

func (s *stubAdminService) UpdateSong(ctx context.Context, id int64, title string, durationMinutes, durationSeconds int) error {
	return nil
}

func (s *stubAdminService) CreateSingle(ctx context.Context, staffID int64, in admin.SingleInput) (models.AlbumDetail, error) {
	s.lastStaffID = staffID
	s.lastSingle = in
	return s.createdSingle, nil
}

func (s *stubAdminService) UpdateUser(ctx context.Context, id int64, displayName string, tier models.SubscriptionTier) error {
	s.updatedUserID = id
	s.updatedUserTier = tier
	return nil
}

type testServer struct {
	users       *stubUserService
	catalog     *stubCatalogService
	collections *stubCollectionService
	playlists   *stubPlaylistService
	search      *stubSearchService
	admin       *stubAdminService
	handler     http.Handler
}

func newTestServer() *testServer {
	ts := &testServer{
		users:       &stubUserService{tokens: map[string]int64{"user-token": 42}},
		catalog:     &stubCatalogService{},
		collections: &stubCollectionService{},
		playlists:   &stubPlaylistService{},
		search:      &stubSearchService{},
		admin:       &stubAdminService{tokens: map[string]int64{"staff-token": 7}},
	}
	ts.handler = New(ts.users, ts.catalog, ts.collections, ts.playlists, ts.search, ts.admin).Routes()
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, payload any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestRegisterCreatesAccount(t *testing.T) {
	ts := newTestServer()
	ts.users.session = users.Session{Token: "fresh", User: models.User{ID: 1, Email: "new@example.com"}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, registerRequest{
		Email:       "new@example.com",
		Password:    "hunter22",
		DisplayName: "New",
	}))
	rec := ts.do(t, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var session users.Session
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.Token != "fresh" {
		t.Fatalf("expected session token, got %q", session.Token)
	}
	if ts.users.lastEmail != "new@example.com" {
		t.Fatalf("service saw email %q", ts.users.lastEmail)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer()
	ts.users.registerErr = store.ErrUserExists

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", jsonBody(t, registerRequest{
		Email: "taken@example.com", Password: "hunter22",
	}))
	rec := ts.do(t, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	ts := newTestServer()
	ts.users.loginErr = store.ErrInvalidCredentials

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, loginRequest{
		Email: "who@example.com", Password: "nope",
	}))
	rec := ts.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestToggleSongLikeRequiresToken(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs/3/like", nil)
	rec := ts.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestToggleSongLikeReportsState(t *testing.T) {
	ts := newTestServer()
	ts.collections.liked = true

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs/3/like", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp likedResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Liked {
		t.Fatal("expected liked=true")
	}
	if ts.collections.lastUserID != 42 || ts.collections.lastObjectID != 3 {
		t.Fatalf("service saw user=%d song=%d", ts.collections.lastUserID, ts.collections.lastObjectID)
	}
}

func TestSongLikedReadsState(t *testing.T) {
	ts := newTestServer()
	ts.collections.liked = true

	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs/3/like", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp likedResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Liked {
		t.Fatal("expected liked=true")
	}
}

func TestToggleLikeMissingSong(t *testing.T) {
	ts := newTestServer()
	ts.collections.toggleErr = store.ErrSongNotFound

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs/999/like", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreatePlaylistBlankNameRejected(t *testing.T) {
	ts := newTestServer()
	ts.playlists.createErr = fmt.Errorf("%w: playlist name is required", store.ErrValidation)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", jsonBody(t, createPlaylistRequest{Name: "   "}))
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "internal error") {
		t.Fatalf("validation failure should not be masked, got body %q", rec.Body.String())
	}
}

func TestCreatePlaylistQuotaExceeded(t *testing.T) {
	ts := newTestServer()
	ts.playlists.createErr = store.ErrQuotaExceeded

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", jsonBody(t, createPlaylistRequest{Name: "Fourth"}))
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestGetPrivatePlaylistDenied(t *testing.T) {
	ts := newTestServer()
	ts.playlists.getErr = store.ErrPermissionDenied

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/5", nil)
	rec := ts.do(t, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if ts.playlists.lastRequesterID != 0 {
		t.Fatalf("anonymous requester should be 0, got %d", ts.playlists.lastRequesterID)
	}
}

func TestRemovePlaylistSongParsesBothIDs(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/5/songs/12", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.playlists.lastPlaylistID != 5 || ts.playlists.lastSongID != 12 {
		t.Fatalf("service saw playlist=%d song=%d", ts.playlists.lastPlaylistID, ts.playlists.lastSongID)
	}
}

func TestSearchPassesRequester(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=aphex", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.search.lastQuery != "aphex" || ts.search.lastRequesterID != 42 {
		t.Fatalf("service saw q=%q requester=%d", ts.search.lastQuery, ts.search.lastRequesterID)
	}
}

func TestAdminDashboardRejectsUserToken(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("user token must not open the back office, got %d", rec.Code)
	}
}

func TestAdminDashboard(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.admin.lastStaffID != 7 {
		t.Fatalf("dashboard resolved staff ID %d", ts.admin.lastStaffID)
	}
}

func TestUserEndpointRejectsStaffToken(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/songs/3/like", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("staff token must not act as a user, got %d", rec.Code)
	}
}

func TestAdminCreateArtistMultipart(t *testing.T) {
	ts := newTestServer()
	ts.admin.createdArtist = models.Artist{ID: 9, Name: "Boards of Canada"}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("name", "Boards of Canada"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := form.CreateFormFile("image", "press.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("jpeg bytes")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/artists", &body)
	req.Header.Set("Authorization", "Bearer staff-token")
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := ts.do(t, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.admin.lastArtistName != "Boards of Canada" {
		t.Fatalf("service saw name %q", ts.admin.lastArtistName)
	}
}

func TestAdminCreateSingleRequiresAudio(t *testing.T) {
	ts := newTestServer()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("title", "Silent Single")
	form.WriteField("artist_id", "9")
	form.WriteField("duration_minutes", "3")
	form.WriteField("duration_seconds", "30")
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/singles", &body)
	req.Header.Set("Authorization", "Bearer staff-token")
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := ts.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without audio, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "audio") {
		t.Fatalf("expected audio error, got %s", rec.Body.String())
	}
}

func TestAdminCreateSingle(t *testing.T) {
	ts := newTestServer()
	ts.admin.createdSingle = models.AlbumDetail{
		Album: models.Album{ID: 33, Title: "One Off"},
		Songs: []models.Song{{ID: 44, Title: "One Off"}},
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("title", "One Off")
	form.WriteField("artist_id", "9")
	form.WriteField("duration_minutes", "3")
	form.WriteField("duration_seconds", "30")
	part, err := form.CreateFormFile("audio", "oneoff.mp3")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("mp3 bytes"))
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/singles", &body)
	req.Header.Set("Authorization", "Bearer staff-token")
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := ts.do(t, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.admin.lastStaffID != 7 {
		t.Fatalf("service saw staff ID %d", ts.admin.lastStaffID)
	}
	if ts.admin.lastSingle.Title != "One Off" || ts.admin.lastSingle.ArtistID != 9 {
		t.Fatalf("service saw single %+v", ts.admin.lastSingle)
	}
	if ts.admin.lastSingle.Audio == nil || ts.admin.lastSingle.Audio.Name != "oneoff.mp3" {
		t.Fatal("expected audio upload to reach the service")
	}
}

func TestAdminUpdateUserValidatesTier(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/users/42", jsonBody(t, adminUpdateUserRequest{
		DisplayName:      "Renamed",
		SubscriptionTier: "gold",
	}))
	req.Header.Set("Authorization", "Bearer staff-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tier, got %d", rec.Code)
	}
}

func TestAdminUpdateUserUpgradesTier(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/users/42", jsonBody(t, adminUpdateUserRequest{
		DisplayName:      "Renamed",
		SubscriptionTier: "premium",
	}))
	req.Header.Set("Authorization", "Bearer staff-token")
	rec := ts.do(t, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if ts.admin.updatedUserID != 42 || ts.admin.updatedUserTier != models.TierPremium {
		t.Fatalf("service saw user=%d tier=%q", ts.admin.updatedUserID, ts.admin.updatedUserTier)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
