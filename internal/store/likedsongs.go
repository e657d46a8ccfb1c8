package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mixtape/internal/ordering"
)

// ErrSongNotLiked signals the song is not in the user's liked list.
var ErrSongNotLiked = errors.New("song not in liked songs")

// LikedSong is one entry of a user's liked-songs list. A song appears at
// most once per user; positions order the list.
type LikedSong struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SongID    string    `json:"song_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// AddLikedSong appends a song to the user's liked list. Liking an already
// liked song is a no-op: the existing row comes back unchanged and no
// position moves.
func (s *Store) AddLikedSong(ctx context.Context, userID, songID string) (LikedSong, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LikedSong{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	snapshot, err := lockScope(ctx, tx, likedSongs, userID)
	if err != nil {
		return LikedSong{}, err
	}

	if rowID, ok := resolveRef(snapshot, songID); ok {
		var existing LikedSong
		if err = tx.QueryRowContext(ctx, `
			SELECT id, user_id, song_id, position, created_at
			FROM liked_songs
			WHERE id = $1`, rowID).Scan(
			&existing.ID, &existing.UserID, &existing.SongID, &existing.Position, &existing.CreatedAt,
		); err != nil {
			return LikedSong{}, fmt.Errorf("get liked song: %w", err)
		}
		if err = commitErr(tx.Commit()); err != nil {
			return LikedSong{}, err
		}
		return existing, nil
	}

	pos, _ := ordering.Insert(ordering.Append, entries(snapshot))

	liked := LikedSong{
		ID:        uuid.NewString(),
		UserID:    userID,
		SongID:    songID,
		Position:  pos,
		CreatedAt: time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO liked_songs (id, user_id, song_id, position, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		liked.ID, liked.UserID, liked.SongID, liked.Position, liked.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			err = ErrConflict
			return LikedSong{}, err
		}
		return LikedSong{}, fmt.Errorf("insert liked song: %w", err)
	}

	if err = commitErr(tx.Commit()); err != nil {
		return LikedSong{}, err
	}
	return liked, nil
}

// RemoveLikedSong deletes a song from the liked list and renumbers the rest.
func (s *Store) RemoveLikedSong(ctx context.Context, userID, songID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	snapshot, err := lockScope(ctx, tx, likedSongs, userID)
	if err != nil {
		return err
	}

	rowID, ok := resolveRef(snapshot, songID)
	if !ok {
		err = ErrSongNotLiked
		return err
	}

	changes, _, _ := ordering.Remove(entries(snapshot), rowID)

	if _, err = tx.ExecContext(ctx, `DELETE FROM liked_songs WHERE id = $1`, rowID); err != nil {
		return fmt.Errorf("delete liked song: %w", err)
	}
	if err = applyChanges(ctx, tx, likedSongs, changes); err != nil {
		return err
	}

	err = commitErr(tx.Commit())
	return err
}

// ListLikedSongs returns the user's liked songs ordered by position.
// A limit of 0 means no limit.
func (s *Store) ListLikedSongs(ctx context.Context, userID string, offset, limit int) ([]LikedSong, error) {
	query := `
		SELECT id, user_id, song_id, position, created_at
		FROM liked_songs
		WHERE user_id = $1
		ORDER BY position ASC`
	args := []any{userID}
	if limit > 0 {
		query += `
		OFFSET $2 LIMIT $3`
		args = append(args, offset, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list liked songs: %w", err)
	}
	defer rows.Close()

	songs := make([]LikedSong, 0)
	for rows.Next() {
		var liked LikedSong
		if err := rows.Scan(&liked.ID, &liked.UserID, &liked.SongID, &liked.Position, &liked.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan liked song: %w", err)
		}
		songs = append(songs, liked)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked songs: %w", err)
	}
	return songs, nil
}

// IsLiked reports whether the user has liked the song.
func (s *Store) IsLiked(ctx context.Context, userID, songID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM liked_songs WHERE user_id = $1 AND song_id = $2)`,
		userID, songID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check liked song: %w", err)
	}
	return exists, nil
}

// MoveLikedSong moves one liked song to a new 1-based position, shifting the
// songs between the old and new slot by one.
func (s *Store) MoveLikedSong(ctx context.Context, userID, songID string, newPos int) error {
	return s.ReorderLikedSongs(ctx, userID, []SongMove{{SongID: songID, Position: newPos}})
}

// ReorderLikedSongs applies a batch of moves to the liked list. The batch is
// validated before any write; an invalid song or position rejects it whole.
func (s *Store) ReorderLikedSongs(ctx context.Context, userID string, moves []SongMove) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	snapshot, err := lockScope(ctx, tx, likedSongs, userID)
	if err != nil {
		return err
	}

	changes, err := planMoves(snapshot, moves)
	if err != nil {
		return err
	}
	if err = applyChanges(ctx, tx, likedSongs, changes); err != nil {
		return err
	}

	err = commitErr(tx.Commit())
	return err
}
