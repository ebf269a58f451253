package httpapi

import "net/http"

// handleSearch answers GET /api/v1/search?q=. Anonymous requests only see
// public playlists; a logged-in requester also matches their own.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	requesterID := s.optionalUser(r)

	results, err := s.search.Search(r.Context(), query, requesterID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
