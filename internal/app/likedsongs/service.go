package likedsongs

import (
	"context"
	"errors"

	"mixtape/internal/store"
)

// Store defines persistence operations required for liked-songs workflows.
type Store interface {
	AddLikedSong(ctx context.Context, userID, songID string) (store.LikedSong, error)
	RemoveLikedSong(ctx context.Context, userID, songID string) error
	ListLikedSongs(ctx context.Context, userID string, offset, limit int) ([]store.LikedSong, error)
	IsLiked(ctx context.Context, userID, songID string) (bool, error)
	MoveLikedSong(ctx context.Context, userID, songID string, newPos int) error
	ReorderLikedSongs(ctx context.Context, userID string, moves []store.SongMove) error
}

// Service describes high level liked-songs operations used by HTTP handlers.
type Service interface {
	Like(ctx context.Context, userID, songID string) (store.LikedSong, error)
	Unlike(ctx context.Context, userID, songID string) (bool, error)
	List(ctx context.Context, userID string, offset, limit int) ([]store.LikedSong, error)
	IsLiked(ctx context.Context, userID, songID string) (bool, error)
	Move(ctx context.Context, userID, songID string, newPos int) error
	Reorder(ctx context.Context, userID string, moves []store.SongMove) error
}

type service struct {
	store Store
}

// New constructs a liked-songs Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Like is idempotent: liking the same song twice returns the original row.
func (s *service) Like(ctx context.Context, userID, songID string) (store.LikedSong, error) {
	if err := ctx.Err(); err != nil {
		return store.LikedSong{}, err
	}
	return s.store.AddLikedSong(ctx, userID, songID)
}

// Unlike reports false without error when the song was never liked.
func (s *service) Unlike(ctx context.Context, userID, songID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.store.RemoveLikedSong(ctx, userID, songID)
	if errors.Is(err, store.ErrSongNotLiked) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) List(ctx context.Context, userID string, offset, limit int) ([]store.LikedSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListLikedSongs(ctx, userID, offset, limit)
}

func (s *service) IsLiked(ctx context.Context, userID, songID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.IsLiked(ctx, userID, songID)
}

func (s *service) Move(ctx context.Context, userID, songID string, newPos int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.MoveLikedSong(ctx, userID, songID, newPos)
}

func (s *service) Reorder(ctx context.Context, userID string, moves []store.SongMove) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.ReorderLikedSongs(ctx, userID, moves)
}
