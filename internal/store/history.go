package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mixtape/internal/ordering"
)

// ErrHistoryEntryNotFound signals the song has no entry in the history.
var ErrHistoryEntryNotFound = errors.New("entry not found in history")

// HistoryEntry is one play of a song. History is a log, not a set: the same
// song can appear any number of times. Song name and artist are denormalized
// caller-supplied copies, never resolved against a catalog.
type HistoryEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SongID     string    `json:"song_id"`
	SongName   string    `json:"song_name"`
	ArtistName string    `json:"artist_name"`
	Seconds    int       `json:"seconds"`
	Position   int       `json:"position"`
	PlayedAt   time.Time `json:"played_at"`
}

// HistoryPage is one page of a filtered history listing.
type HistoryPage struct {
	Entries    []HistoryEntry `json:"entries"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// HistoryFilter narrows a history listing. Both fields are case-insensitive
// substring matches applied before pagination and before the total count.
type HistoryFilter struct {
	Search string // matches song name
	Artist string // matches artist name
}

// AddHistoryEntry records a play at the front of the user's history: every
// existing entry shifts down one position and the new entry takes position 1.
func (s *Store) AddHistoryEntry(ctx context.Context, userID string, entry HistoryEntry) (HistoryEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	snapshot, err := lockScope(ctx, tx, historyEntries, userID)
	if err != nil {
		return HistoryEntry{}, err
	}

	pos, shifts := ordering.Insert(ordering.PushFront, entries(snapshot))
	if err = applyChanges(ctx, tx, historyEntries, shifts); err != nil {
		return HistoryEntry{}, err
	}

	entry.ID = uuid.NewString()
	entry.UserID = userID
	entry.Position = pos
	entry.PlayedAt = time.Now().UTC()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, user_id, song_id, song_name, artist_name, seconds, position, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserID, entry.SongID, entry.SongName, entry.ArtistName,
		entry.Seconds, entry.Position, entry.PlayedAt,
	); err != nil {
		return HistoryEntry{}, fmt.Errorf("insert history entry: %w", err)
	}

	if err = commitErr(tx.Commit()); err != nil {
		return HistoryEntry{}, err
	}
	return entry, nil
}

// ListHistory returns one page of the user's history ordered by position,
// most recent first. Filters apply before the count used for TotalPages.
func (s *Store) ListHistory(ctx context.Context, userID string, page, limit int, filter HistoryFilter) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	where := `WHERE user_id = $1`
	args := []any{userID}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(`
		  AND song_name ILIKE $%d`, len(args))
	}
	if filter.Artist != "" {
		args = append(args, "%"+filter.Artist+"%")
		where += fmt.Sprintf(`
		  AND artist_name ILIKE $%d`, len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM history
		`+where, args...).Scan(&total); err != nil {
		return HistoryPage{}, fmt.Errorf("count history: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, song_id, song_name, artist_name, seconds, position, played_at
		FROM history
		%s
		ORDER BY position ASC
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	args = append(args, (page-1)*limit, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	result := HistoryPage{
		Entries:    make([]HistoryEntry, 0),
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: 1,
	}
	if total > 0 {
		result.TotalPages = (total + limit - 1) / limit
	}

	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.SongID, &entry.SongName,
			&entry.ArtistName, &entry.Seconds, &entry.Position, &entry.PlayedAt); err != nil {
			return HistoryPage{}, fmt.Errorf("scan history entry: %w", err)
		}
		result.Entries = append(result.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return HistoryPage{}, fmt.Errorf("iterate history: %w", err)
	}
	return result, nil
}

// RemoveHistoryEntry deletes one play of a song from the history and
// renumbers the entries behind it. With repeated plays the most recent
// occurrence is removed.
func (s *Store) RemoveHistoryEntry(ctx context.Context, userID, songID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	snapshot, err := lockScope(ctx, tx, historyEntries, userID)
	if err != nil {
		return err
	}

	rowID, ok := resolveRef(snapshot, songID)
	if !ok {
		err = ErrHistoryEntryNotFound
		return err
	}

	changes, _, _ := ordering.Remove(entries(snapshot), rowID)

	if _, err = tx.ExecContext(ctx, `DELETE FROM history WHERE id = $1`, rowID); err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if err = applyChanges(ctx, tx, historyEntries, changes); err != nil {
		return err
	}

	err = commitErr(tx.Commit())
	return err
}

// ClearHistory deletes the user's whole history. The return distinguishes
// clearing something from clearing an already empty history.
func (s *Store) ClearHistory(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("clear history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
