package playlists

import (
	"context"

	"mixtape/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, ownerID string, playlist store.Playlist) (store.Playlist, error)
	ListPlaylists(ctx context.Context, viewerID, ownerID string) ([]store.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (store.Playlist, error)
	UpdatePlaylist(ctx context.Context, actorID, id string, playlist store.Playlist) (store.Playlist, error)
	UpdatePlaylistCover(ctx context.Context, actorID, id, coverURL string) error
	DeletePlaylist(ctx context.Context, actorID, id string) error
	AddPlaylistSong(ctx context.Context, playlistID, songID string) (store.PlaylistSong, error)
	RemovePlaylistSong(ctx context.Context, playlistID, songID string) error
	ListPlaylistSongs(ctx context.Context, playlistID string, offset, limit int) ([]store.PlaylistSong, error)
	ReorderPlaylistSongs(ctx context.Context, playlistID string, moves []store.SongMove) error
}

// Service coordinates playlist operations.
type Service interface {
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

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, ownerID string, playlist store.Playlist) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, ownerID, playlist)
}

func (s *service) List(ctx context.Context, viewerID, ownerID string) ([]store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, viewerID, ownerID)
}

func (s *service) Get(ctx context.Context, id string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.GetPlaylist(ctx, id)
}

func (s *service) Update(ctx context.Context, actorID, id string, playlist store.Playlist) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.UpdatePlaylist(ctx, actorID, id, playlist)
}

func (s *service) UpdateCover(ctx context.Context, actorID, id, coverURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.UpdatePlaylistCover(ctx, actorID, id, coverURL)
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, actorID, id)
}

func (s *service) AddSong(ctx context.Context, playlistID, songID string) (store.PlaylistSong, error) {
	if err := ctx.Err(); err != nil {
		return store.PlaylistSong{}, err
	}
	return s.store.AddPlaylistSong(ctx, playlistID, songID)
}

func (s *service) RemoveSong(ctx context.Context, playlistID, songID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemovePlaylistSong(ctx, playlistID, songID)
}

func (s *service) ListSongs(ctx context.Context, playlistID string, offset, limit int) ([]store.PlaylistSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylistSongs(ctx, playlistID, offset, limit)
}

func (s *service) ReorderSongs(ctx context.Context, playlistID string, moves []store.SongMove) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.ReorderPlaylistSongs(ctx, playlistID, moves)
}
