package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"mixtape/internal/ordering"
)

var (
	// ErrConflict signals that concurrent writers touched the same scope and
	// the transaction was rolled back; the caller should retry.
	ErrConflict = errors.New("concurrent modification, retry")
	// ErrNotOwner indicates the acting user does not own the playlist.
	ErrNotOwner = errors.New("not the playlist owner")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// collection describes one ordered table: which column partitions the
// position space and which column carries the caller-facing reference.
// Table and column names are package constants, never caller input.
type collection struct {
	table    string
	scopeCol string
	refCol   string
}

var (
	playlistSongs  = collection{table: "playlist_songs", scopeCol: "playlist_id", refCol: "song_id"}
	likedSongs     = collection{table: "liked_songs", scopeCol: "user_id", refCol: "song_id"}
	historyEntries = collection{table: "history", scopeCol: "user_id", refCol: "song_id"}
)

// scopeRow is one locked row of a scope. The row id keys position updates;
// the ref is the external identifier callers address rows by. Refs may
// repeat within a scope (history, playlist duplicates), row ids never do.
type scopeRow struct {
	id  string
	ref string
	pos int
}

// lockScope loads the ordered snapshot of a scope and locks its rows so a
// concurrent writer on the same scope blocks until this transaction ends.
// Rows of other scopes are not touched.
func lockScope(ctx context.Context, tx *sql.Tx, c collection, scopeID string) ([]scopeRow, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, position
		FROM %s
		WHERE %s = $1
		ORDER BY position ASC
		FOR UPDATE`, c.refCol, c.table, c.scopeCol)

	rows, err := tx.QueryContext(ctx, query, scopeID)
	if err != nil {
		return nil, fmt.Errorf("lock %s scope: %w", c.table, err)
	}
	defer rows.Close()

	var snapshot []scopeRow
	for rows.Next() {
		var row scopeRow
		if err := rows.Scan(&row.id, &row.ref, &row.pos); err != nil {
			return nil, fmt.Errorf("scan %s snapshot: %w", c.table, err)
		}
		snapshot = append(snapshot, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s snapshot: %w", c.table, err)
	}
	return snapshot, nil
}

// entries converts a locked snapshot into reindexer input keyed by row id.
func entries(snapshot []scopeRow) []ordering.Entry {
	result := make([]ordering.Entry, len(snapshot))
	for i, row := range snapshot {
		result[i] = ordering.Entry{Ref: row.id, Position: row.pos}
	}
	return result
}

// resolveRef returns the row id holding the given external ref. When a ref
// appears more than once the row closest to the front wins; the snapshot is
// ordered by position so the first match is that row.
func resolveRef(snapshot []scopeRow, ref string) (string, bool) {
	for _, row := range snapshot {
		if row.ref == ref {
			return row.id, true
		}
	}
	return "", false
}

// applyChanges writes the position assignment computed by the reindexer.
// The (scope, position) unique constraints are deferred, so intermediate
// states inside the transaction may overlap.
func applyChanges(ctx context.Context, tx *sql.Tx, c collection, changes []ordering.Change) error {
	if len(changes) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = $1
		WHERE id = $2`, c.table)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare %s position update: %w", c.table, err)
	}
	defer stmt.Close()

	for _, change := range changes {
		if _, err := stmt.ExecContext(ctx, change.Position, change.Ref); err != nil {
			return fmt.Errorf("update %s position: %w", c.table, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isSerializationFailure matches the Postgres errors raised when concurrent
// transactions on the same scope cannot both proceed.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// commitErr maps commit-time concurrency failures onto ErrConflict.
func commitErr(err error) error {
	if err == nil {
		return nil
	}
	if isSerializationFailure(err) || isUniqueViolation(err) {
		return ErrConflict
	}
	return fmt.Errorf("commit tx: %w", err)
}
