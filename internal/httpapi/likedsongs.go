package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"mixtape/internal/store"
)

func (s *Server) listLikedSongs(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)

	songs, err := s.likedSongs.List(r.Context(), actor, offset, limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.LikedSong{"liked_songs": songs})
}

func (s *Server) likeSong(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		SongID string `json:"song_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SongID == "" {
		writeError(w, http.StatusBadRequest, "song_id is required")
		return
	}

	liked, err := s.likedSongs.Like(r.Context(), actor, payload.SongID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, liked)
}

func (s *Server) unlikeSong(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	removed, err := s.likedSongs.Unlike(r.Context(), actor, mux.Vars(r)["songId"])
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, store.ErrSongNotLiked.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) isLiked(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	liked, err := s.likedSongs.IsLiked(r.Context(), actor, mux.Vars(r)["songId"])
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (s *Server) moveLikedSong(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Position int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.likedSongs.Move(r.Context(), actor, mux.Vars(r)["songId"], payload.Position); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reorderLikedSongs(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var moves []store.SongMove
	if err := json.NewDecoder(r.Body).Decode(&moves); err != nil || len(moves) == 0 {
		writeError(w, http.StatusBadRequest, "a non-empty list of moves is required")
		return
	}

	if err := s.likedSongs.Reorder(r.Context(), actor, moves); err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "liked songs reordered"})
}
