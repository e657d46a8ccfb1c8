package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mixtape/internal/ordering"
)

var (
	// ErrPlaylistNotFound signals a missing playlist record.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrSongNotInPlaylist signals the song is not part of the playlist.
	ErrSongNotInPlaylist = errors.New("song not found in playlist")
	// ErrInvalidPlaylist indicates validation failure for playlist data.
	ErrInvalidPlaylist = errors.New("invalid playlist")
)

// Playlist captures a user-curated ordered list of songs.
type Playlist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CoverURL  string         `json:"cover_url,omitempty"`
	OwnerID   string         `json:"owner_id"`
	IsPublic  bool           `json:"is_public"`
	CreatedAt time.Time      `json:"created_at"`
	SongCount int            `json:"song_count"`
	Songs     []PlaylistSong `json:"songs,omitempty"`
}

// PlaylistSong is one ordered membership row inside a playlist. SongID is an
// opaque reference into an external catalog and is never validated here.
type PlaylistSong struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	SongID     string    `json:"song_id"`
	Position   int       `json:"position"`
	AddedAt    time.Time `json:"added_at"`
}

// CreatePlaylist persists a new playlist owned by the given user.
func (s *Store) CreatePlaylist(ctx context.Context, ownerID string, playlist Playlist) (Playlist, error) {
	playlist.Name = strings.TrimSpace(playlist.Name)
	if playlist.Name == "" {
		return Playlist{}, fmt.Errorf("%w: name is required", ErrInvalidPlaylist)
	}
	if ownerID == "" {
		return Playlist{}, fmt.Errorf("%w: owner is required", ErrInvalidPlaylist)
	}

	playlist.ID = uuid.NewString()
	playlist.OwnerID = ownerID
	playlist.CreatedAt = time.Now().UTC()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, cover_url, owner_id, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		playlist.ID, playlist.Name, nullIfEmpty(playlist.CoverURL), playlist.OwnerID,
		playlist.IsPublic, playlist.CreatedAt,
	); err != nil {
		return Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}

	return playlist, nil
}

// ListPlaylists returns the playlists visible to the viewer: public ones plus
// the viewer's own. An optional owner filter narrows the result to one user's
// playlists, still subject to visibility. Song rows are not expanded;
// SongCount reflects the current membership size.
func (s *Store) ListPlaylists(ctx context.Context, viewerID, ownerID string) ([]Playlist, error) {
	query := `
		SELECT p.id, p.name, COALESCE(p.cover_url, ''), p.owner_id, p.is_public, p.created_at,
		       (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id)
		FROM playlists p`
	var conds []string
	var args []any
	if ownerID != "" {
		args = append(args, ownerID)
		conds = append(conds, fmt.Sprintf("p.owner_id = $%d", len(args)))
	}
	if viewerID != "" {
		args = append(args, viewerID)
		conds = append(conds, fmt.Sprintf("(p.is_public OR p.owner_id = $%d)", len(args)))
	} else {
		conds = append(conds, "p.is_public")
	}
	query += `
		WHERE ` + strings.Join(conds, " AND ")
	query += `
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.CoverURL, &p.OwnerID, &p.IsPublic, &p.CreatedAt, &p.SongCount); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist returns a single playlist with its songs ordered by position.
func (s *Store) GetPlaylist(ctx context.Context, id string) (Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(cover_url, ''), owner_id, is_public, created_at
		FROM playlists
		WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.CoverURL, &p.OwnerID, &p.IsPublic, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("get playlist: %w", err)
	}

	songs, err := s.ListPlaylistSongs(ctx, id, 0, 0)
	if err != nil {
		return Playlist{}, err
	}
	p.Songs = songs
	p.SongCount = len(songs)
	return p, nil
}

// UpdatePlaylist changes a playlist's metadata. Only the owner may do so.
func (s *Store) UpdatePlaylist(ctx context.Context, actorID, id string, playlist Playlist) (Playlist, error) {
	playlist.Name = strings.TrimSpace(playlist.Name)
	if playlist.Name == "" {
		return Playlist{}, fmt.Errorf("%w: name is required", ErrInvalidPlaylist)
	}

	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return Playlist{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = $1, cover_url = $2, is_public = $3
		WHERE id = $4`,
		playlist.Name, nullIfEmpty(playlist.CoverURL), playlist.IsPublic, id,
	); err != nil {
		return Playlist{}, fmt.Errorf("update playlist: %w", err)
	}

	return s.GetPlaylist(ctx, id)
}

// UpdatePlaylistCover replaces the cover URL. The URL is caller-supplied and
// opaque; image hosting lives outside this service.
func (s *Store) UpdatePlaylistCover(ctx context.Context, actorID, id, coverURL string) error {
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET cover_url = $1
		WHERE id = $2`, nullIfEmpty(coverURL), id,
	); err != nil {
		return fmt.Errorf("update playlist cover: %w", err)
	}
	return nil
}

// DeletePlaylist removes a playlist. Membership rows go with it through the
// cascade on playlist_songs. Only the owner may delete.
func (s *Store) DeletePlaylist(ctx context.Context, actorID, id string) error {
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

// AddPlaylistSong appends a song to the end of a playlist. Duplicate songs
// are allowed; every call creates a new membership row.
func (s *Store) AddPlaylistSong(ctx context.Context, playlistID, songID string) (PlaylistSong, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PlaylistSong{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = playlistExistsTx(ctx, tx, playlistID); err != nil {
		return PlaylistSong{}, err
	}

	snapshot, err := lockScope(ctx, tx, playlistSongs, playlistID)
	if err != nil {
		return PlaylistSong{}, err
	}

	pos, _ := ordering.Insert(ordering.Append, entries(snapshot))

	song := PlaylistSong{
		ID:         uuid.NewString(),
		PlaylistID: playlistID,
		SongID:     songID,
		Position:   pos,
		AddedAt:    time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO playlist_songs (id, playlist_id, song_id, position, added_at)
		VALUES ($1, $2, $3, $4, $5)`,
		song.ID, song.PlaylistID, song.SongID, song.Position, song.AddedAt,
	); err != nil {
		return PlaylistSong{}, fmt.Errorf("insert playlist song: %w", err)
	}

	if err = commitErr(tx.Commit()); err != nil {
		return PlaylistSong{}, err
	}
	return song, nil
}

// RemovePlaylistSong deletes a song from a playlist and closes the gap it
// leaves: every later row moves up one position. With duplicates, the
// occurrence closest to the front is removed.
func (s *Store) RemovePlaylistSong(ctx context.Context, playlistID, songID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = playlistExistsTx(ctx, tx, playlistID); err != nil {
		return err
	}

	snapshot, err := lockScope(ctx, tx, playlistSongs, playlistID)
	if err != nil {
		return err
	}

	rowID, ok := resolveRef(snapshot, songID)
	if !ok {
		err = ErrSongNotInPlaylist
		return err
	}

	changes, _, _ := ordering.Remove(entries(snapshot), rowID)

	if _, err = tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE id = $1`, rowID); err != nil {
		return fmt.Errorf("delete playlist song: %w", err)
	}
	if err = applyChanges(ctx, tx, playlistSongs, changes); err != nil {
		return err
	}

	err = commitErr(tx.Commit())
	return err
}

// ListPlaylistSongs returns playlist membership ordered by position.
// A limit of 0 means no limit.
func (s *Store) ListPlaylistSongs(ctx context.Context, playlistID string, offset, limit int) ([]PlaylistSong, error) {
	query := `
		SELECT id, playlist_id, song_id, position, added_at
		FROM playlist_songs
		WHERE playlist_id = $1
		ORDER BY position ASC`
	args := []any{playlistID}
	if limit > 0 {
		query += `
		OFFSET $2 LIMIT $3`
		args = append(args, offset, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]PlaylistSong, 0)
	for rows.Next() {
		var song PlaylistSong
		if err := rows.Scan(&song.ID, &song.PlaylistID, &song.SongID, &song.Position, &song.AddedAt); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

// ReorderPlaylistSongs applies a batch of moves to a playlist. The batch is
// validated before any write; an invalid song or position rejects it whole.
func (s *Store) ReorderPlaylistSongs(ctx context.Context, playlistID string, moves []SongMove) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = playlistExistsTx(ctx, tx, playlistID); err != nil {
		return err
	}

	snapshot, err := lockScope(ctx, tx, playlistSongs, playlistID)
	if err != nil {
		return err
	}

	changes, err := planMoves(snapshot, moves)
	if err != nil {
		return err
	}
	if err = applyChanges(ctx, tx, playlistSongs, changes); err != nil {
		return err
	}

	err = commitErr(tx.Commit())
	return err
}

// SongMove asks for one song to end at the given 1-based position.
type SongMove struct {
	SongID   string `json:"song_id"`
	Position int    `json:"position"`
}

// planMoves resolves caller-facing song refs to row ids and hands the batch
// to the reindexer. Unknown refs fail before anything is computed.
func planMoves(snapshot []scopeRow, moves []SongMove) ([]ordering.Change, error) {
	resolved := make([]ordering.Move, 0, len(moves))
	for _, m := range moves {
		rowID, ok := resolveRef(snapshot, m.SongID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ordering.ErrUnknownRef, m.SongID)
		}
		resolved = append(resolved, ordering.Move{Ref: rowID, Position: m.Position})
	}
	return ordering.Reorder(entries(snapshot), resolved)
}

func (s *Store) requireOwner(ctx context.Context, playlistID, actorID string) error {
	var ownerID string
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id
		FROM playlists
		WHERE id = $1`, playlistID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	if err != nil {
		return fmt.Errorf("check playlist owner: %w", err)
	}
	if ownerID != actorID {
		return ErrNotOwner
	}
	return nil
}

func playlistExistsTx(ctx context.Context, tx *sql.Tx, playlistID string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM playlists WHERE id = $1)`, playlistID).Scan(&exists); err != nil {
		return fmt.Errorf("check playlist exists: %w", err)
	}
	if !exists {
		return ErrPlaylistNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
