package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aaa123456yg/music-platform/internal/app/admin"
	"github.com/aaa123456yg/music-platform/internal/store"
	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// Multipart uploads are capped well above any reasonable lossless track.
const maxUploadBytes = 256 << 20

const releaseDateLayout = "2006-01-02"

type adminLoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	session, err := s.admin.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	if err := s.admin.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	staffID, ok := s.requireStaff(w, r)
	if !ok {
		return
	}

	dashboard, err := s.admin.Dashboard(r.Context(), staffID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleAdminCreateArtist(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireStaff(w, r); !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	image, err := formUpload(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid image upload"})
		return
	}
	defer func() { _ = image.Close() }()

	artist, err := s.admin.CreateArtist(r.Context(), r.FormValue("name"), r.FormValue("bio"), image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) handleAdminUpdateArtist(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireStaff(w, r); !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid artist id"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	image, err := formUpload(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid image upload"})
		return
	}
	defer func() { _ = image.Close() }()

	if err := s.admin.UpdateArtist(r.Context(), id, r.FormValue("name"), r.FormValue("bio"), image); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminCreateAlbum(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireStaff(w, r); !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	artistID, err := strconv.ParseInt(r.FormValue("artist_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid artist_id"})
		return
	}
	releaseDate, err := formReleaseDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid release_date, want YYYY-MM-DD"})
		return
	}
	cover, err := formUpload(r, "cover")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cover upload"})
		return
	}
	defer func() { _ = cover.Close() }()

	album, err := s.admin.CreateAlbum(r.Context(), r.FormValue("title"), artistID, releaseDate, cover)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (s *Server) handleAdminUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireStaff(w, r); !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	releaseDate, err := formReleaseDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid release_date, want YYYY-MM-DD"})
		return
	}
	cover, err := formUpload(r, "cover")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cover upload"})
		return
	}
	defer func() { _ = cover.Close() }()

	if err := s.admin.UpdateAlbum(r.Context(), id, r.FormValue("title"), releaseDate, cover); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminCreateSong(w http.ResponseWriter, r *http.Request) {
	staffID, ok := s.requireStaff(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	albumID, err := strconv.ParseInt(r.FormValue("album_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album_id"})
		return
	}
	minutes, seconds, err := formDuration(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	credits, err := formCredits(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	audio, err := formUpload(r, "audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid audio upload"})
		return
	}
	defer func() { _ = audio.Close() }()
	if audio == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "audio file is required"})
		return
	}

	song, err := s.admin.CreateSong(r.Context(), staffID, admin.SongInput{
		Title:           r.FormValue("title"),
		AlbumID:         albumID,
		DurationMinutes: minutes,
		DurationSeconds: seconds,
		Credits:         credits,
		Audio:           audio,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

type adminUpdateSongRequest struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (s *Server) handleAdminUpdateSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireStaff(w, r); !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	var req adminUpdateSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.admin.UpdateSong(r.Context(), id, req.Title, req.DurationMinutes, req.DurationSeconds); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminCreateSingle(w http.ResponseWriter, r *http.Request) {
	staffID, ok := s.requireStaff(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	artistID, err := strconv.ParseInt(r.FormValue("artist_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid artist_id"})
		return
	}
	minutes, seconds, err := formDuration(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	audio, err := formUpload(r, "audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid audio upload"})
		return
	}
	defer func() { _ = audio.Close() }()
	if audio == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "audio file is required"})
		return
	}
	cover, err := formUpload(r, "cover")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cover upload"})
		return
	}
	defer func() { _ = cover.Close() }()

	single, err := s.admin.CreateSingle(r.Context(), staffID, admin.SingleInput{
		Title:           r.FormValue("title"),
		ArtistID:        artistID,
		DurationMinutes: minutes,
		DurationSeconds: seconds,
		Audio:           audio,
		Cover:           cover,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, single)
}

type adminUpdateUserRequest struct {
	DisplayName      string `json:"display_name"`
	SubscriptionTier string `json:"subscription_tier"`
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireStaff(w, r); !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	var req adminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	tier := models.SubscriptionTier(req.SubscriptionTier)
	if tier != models.TierFree && tier != models.TierPremium {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid subscription_tier"})
		return
	}

	if err := s.admin.UpdateUser(r.Context(), id, req.DisplayName, tier); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// formUpload pulls one optional file out of a parsed multipart form.
func formUpload(r *http.Request, field string) (*admin.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin.Upload{Name: header.Filename, Data: file}, nil
}

func formReleaseDate(r *http.Request) (*time.Time, error) {
	raw := r.FormValue("release_date")
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(releaseDateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func formDuration(r *http.Request) (minutes, seconds int, err error) {
	minutes, err = strconv.Atoi(r.FormValue("duration_minutes"))
	if err != nil {
		return 0, 0, errors.New("invalid duration_minutes")
	}
	seconds, err = strconv.Atoi(r.FormValue("duration_seconds"))
	if err != nil {
		return 0, 0, errors.New("invalid duration_seconds")
	}
	return minutes, seconds, nil
}

// formCredits reads the parallel artist_id and role form fields into song
// credits. Roles are optional and positional.
func formCredits(r *http.Request) ([]store.SongCreditInput, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	ids := r.MultipartForm.Value["artist_id"]
	roles := r.MultipartForm.Value["role"]

	credits := make([]store.SongCreditInput, 0, len(ids))
	for i, raw := range ids {
		artistID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("invalid artist_id in credits")
		}
		credit := store.SongCreditInput{ArtistID: artistID}
		if i < len(roles) {
			credit.Role = roles[i]
		}
		credits = append(credits, credit)
	}
	return credits, nil
}
