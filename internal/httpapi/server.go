package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mixtape/internal/logging"
	"mixtape/internal/store"
)

// PlaylistService coordinates playlist and playlist-song operations.
type PlaylistService interface {
	Create(ctx context.Context, ownerID string, playlist store.Playlist) (store.Playlist, error)
	List(ctx context.Context, viewerID, ownerID string) ([]store.Playlist, error)
	Get(ctx context.Context, id string) (store.Playlist, error)
	Update(ctx context.Context, actorID, id string, playlist store.Playlist) (store.Playlist, error)
	UpdateCover(ctx context.Context, actorID, id, coverURL string) error
	Delete(ctx context.Context, actorID, id string) error
	AddSong(ctx context.Context, playlistID, songID string) (store.PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, songID string) error
	ListSongs(ctx context.Context, playlistID string, offset, limit int) ([]store.PlaylistSong, error)
	ReorderSongs(ctx context.Context, playlistID string, moves []store.SongMove) error
}

// LikedSongsService coordinates the per-user liked-songs list.
type LikedSongsService interface {
	Like(ctx context.Context, userID, songID string) (store.LikedSong, error)
	Unlike(ctx context.Context, userID, songID string) (bool, error)
	List(ctx context.Context, userID string, offset, limit int) ([]store.LikedSong, error)
	IsLiked(ctx context.Context, userID, songID string) (bool, error)
	Move(ctx context.Context, userID, songID string, newPos int) error
	Reorder(ctx context.Context, userID string, moves []store.SongMove) error
}

// HistoryService coordinates the per-user recently-played history.
type HistoryService interface {
	Record(ctx context.Context, userID string, entry store.HistoryEntry) (store.HistoryEntry, error)
	List(ctx context.Context, userID string, page, limit int, filter store.HistoryFilter) (store.HistoryPage, error)
	Remove(ctx context.Context, userID, songID string) error
	Clear(ctx context.Context, userID string) (bool, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	playlists  PlaylistService
	likedSongs LikedSongsService
	history    HistoryService
	jwtSecret  []byte
	logger     zerolog.Logger
}

// New constructs a Server over the given services. The secret verifies
// bearer tokens carrying the acting user id; when empty, only the X-User-Id
// header identifies the actor.
func New(playlists PlaylistService, likedSongs LikedSongsService, history HistoryService, jwtSecret []byte, logger zerolog.Logger) *Server {
	return &Server{
		playlists:  playlists,
		likedSongs: likedSongs,
		history:    history,
		jwtSecret:  jwtSecret,
		logger:     logger,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(logging.Recovery(s.logger))
	r.Use(logging.RequestLogging(s.logger))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/playlists", s.listPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/playlists", s.createPlaylist).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}", s.getPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}", s.updatePlaylist).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id}", s.deletePlaylist).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id}/cover", s.updatePlaylistCover).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id}/songs", s.listPlaylistSongs).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}/songs", s.addPlaylistSong).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}/songs/reorder", s.reorderPlaylistSongs).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id}/songs/{songId}", s.removePlaylistSong).Methods(http.MethodDelete)

	api.HandleFunc("/liked-songs", s.listLikedSongs).Methods(http.MethodGet)
	api.HandleFunc("/liked-songs", s.likeSong).Methods(http.MethodPost)
	api.HandleFunc("/liked-songs/reorder", s.reorderLikedSongs).Methods(http.MethodPut)
	api.HandleFunc("/liked-songs/{songId}", s.isLiked).Methods(http.MethodGet)
	api.HandleFunc("/liked-songs/{songId}", s.unlikeSong).Methods(http.MethodDelete)
	api.HandleFunc("/liked-songs/{songId}/position", s.moveLikedSong).Methods(http.MethodPut)

	api.HandleFunc("/history", s.listHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", s.recordPlay).Methods(http.MethodPost)
	api.HandleFunc("/history", s.clearHistory).Methods(http.MethodDelete)
	api.HandleFunc("/history/{songId}", s.removeHistoryEntry).Methods(http.MethodDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
