package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"mixtape/internal/store"
)

// listPlaylists is open to anonymous callers; without an identified viewer
// only public playlists come back.
func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	viewer := s.actorID(r)
	ownerID := r.URL.Query().Get("user_id")

	playlists, err := s.playlists.List(r.Context(), viewer, ownerID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.Playlist{"playlists": playlists})
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var payload store.Playlist
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlist, err := s.playlists.Create(r.Context(), actor, payload)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) getPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var payload store.Playlist
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlist, err := s.playlists.Update(r.Context(), actor, mux.Vars(r)["id"], payload)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) updatePlaylistCover(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		CoverURL string `json:"cover_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.playlists.UpdateCover(r.Context(), actor, mux.Vars(r)["id"], payload.CoverURL); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	if err := s.playlists.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)

	songs, err := s.playlists.ListSongs(r.Context(), mux.Vars(r)["id"], offset, limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.PlaylistSong{"songs": songs})
}

func (s *Server) addPlaylistSong(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SongID string `json:"song_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SongID == "" {
		writeError(w, http.StatusBadRequest, "song_id is required")
		return
	}

	song, err := s.playlists.AddSong(r.Context(), mux.Vars(r)["id"], payload.SongID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) removePlaylistSong(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.playlists.RemoveSong(r.Context(), vars["id"], vars["songId"]); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reorderPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	var moves []store.SongMove
	if err := json.NewDecoder(r.Body).Decode(&moves); err != nil || len(moves) == 0 {
		writeError(w, http.StatusBadRequest, "a non-empty list of moves is required")
		return
	}

	if err := s.playlists.ReorderSongs(r.Context(), mux.Vars(r)["id"], moves); err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "playlist reordered"})
}
