package httpapi

import "net/http"

type likedResponse struct {
	Liked bool `json:"liked"`
}

type followingResponse struct {
	Following bool `json:"following"`
}

func (s *Server) handleToggleSongLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	songID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	liked, err := s.collections.ToggleSongLike(r.Context(), userID, songID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

func (s *Server) handleToggleAlbumLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	albumID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	liked, err := s.collections.ToggleAlbumLike(r.Context(), userID, albumID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

func (s *Server) handleToggleArtistFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	artistID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid artist id"})
		return
	}

	following, err := s.collections.ToggleArtistFollow(r.Context(), userID, artistID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followingResponse{Following: following})
}

func (s *Server) handleSongLiked(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	songID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
		return
	}

	liked, err := s.collections.SongLiked(r.Context(), userID, songID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

func (s *Server) handleAlbumLiked(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	albumID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid album id"})
		return
	}

	liked, err := s.collections.AlbumLiked(r.Context(), userID, albumID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

func (s *Server) handleArtistFollowed(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	artistID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid artist id"})
		return
	}

	following, err := s.collections.ArtistFollowed(r.Context(), userID, artistID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followingResponse{Following: following})
}
