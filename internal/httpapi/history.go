package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"mixtape/internal/store"
)

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	filter := store.HistoryFilter{
		Search: r.URL.Query().Get("search"),
		Artist: r.URL.Query().Get("artist"),
	}

	result, err := s.history.List(r.Context(), actor, page, limit, filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) recordPlay(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var payload store.HistoryEntry
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SongID == "" {
		writeError(w, http.StatusBadRequest, "song_id is required")
		return
	}

	entry, err := s.history.Record(r.Context(), actor, payload)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	cleared, err := s.history.Clear(r.Context(), actor)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !cleared {
		writeError(w, http.StatusNotFound, "history is already empty")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeHistoryEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	if err := s.history.Remove(r.Context(), actor, mux.Vars(r)["songId"]); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
