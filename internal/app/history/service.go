package history

import (
	"context"

	"mixtape/internal/store"
)

// Store defines persistence operations required for history workflows.
type Store interface {
	AddHistoryEntry(ctx context.Context, userID string, entry store.HistoryEntry) (store.HistoryEntry, error)
	ListHistory(ctx context.Context, userID string, page, limit int, filter store.HistoryFilter) (store.HistoryPage, error)
	RemoveHistoryEntry(ctx context.Context, userID, songID string) error
	ClearHistory(ctx context.Context, userID string) (bool, error)
}

// Service describes high level history operations used by HTTP handlers.
type Service interface {
	Record(ctx context.Context, userID string, entry store.HistoryEntry) (store.HistoryEntry, error)
	List(ctx context.Context, userID string, page, limit int, filter store.HistoryFilter) (store.HistoryPage, error)
	Remove(ctx context.Context, userID, songID string) error
	Clear(ctx context.Context, userID string) (bool, error)
}

type service struct {
	store Store
}

// New constructs a history Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Record pushes a play onto the front of the user's history. Repeat plays of
// the same song each get their own entry.
func (s *service) Record(ctx context.Context, userID string, entry store.HistoryEntry) (store.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return store.HistoryEntry{}, err
	}
	return s.store.AddHistoryEntry(ctx, userID, entry)
}

func (s *service) List(ctx context.Context, userID string, page, limit int, filter store.HistoryFilter) (store.HistoryPage, error) {
	if err := ctx.Err(); err != nil {
		return store.HistoryPage{}, err
	}
	return s.store.ListHistory(ctx, userID, page, limit, filter)
}

func (s *service) Remove(ctx context.Context, userID, songID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RemoveHistoryEntry(ctx, userID, songID)
}

// Clear reports false when there was nothing to clear.
func (s *service) Clear(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.ClearHistory(ctx, userID)
}
