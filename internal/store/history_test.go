package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectHistoryLock(mock sqlmock.Sqlmock, userID string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, song_id, position
		FROM history
		WHERE user_id = $1
		ORDER BY position ASC
		FOR UPDATE
	`)).
		WithArgs(userID).
		WillReturnRows(rows)
}

func historyScopeRows(rows ...[3]any) *sqlmock.Rows {
	result := sqlmock.NewRows([]string{"id", "song_id", "position"})
	for _, r := range rows {
		result.AddRow(r[0], r[1], r[2])
	}
	return result
}

func TestAddHistoryEntryPushesFront(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	expectHistoryLock(mock, "user-1", historyScopeRows(
		[3]any{"row-1", "song-a", 1},
		[3]any{"row-2", "song-b", 2},
	))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`
		UPDATE history
		SET position = $1
		WHERE id = $2
	`))
	prep.ExpectExec().WithArgs(2, "row-1").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(3, "row-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO history (id, user_id, song_id, song_name, artist_name, seconds, position, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "song-c", "Windowlicker", "Aphex Twin", 216, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := s.AddHistoryEntry(context.Background(), "user-1", HistoryEntry{
		SongID:     "song-c",
		SongName:   "Windowlicker",
		ArtistName: "Aphex Twin",
		Seconds:    216,
	})
	if err != nil {
		t.Fatalf("AddHistoryEntry: %v", err)
	}
	if entry.Position != 1 {
		t.Fatalf("expected new entry at position 1, got %d", entry.Position)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddHistoryEntryEmptyHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	expectHistoryLock(mock, "user-1", historyScopeRows())
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO history (id, user_id, song_id, song_name, artist_name, seconds, position, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)).
		WithArgs(sqlmock.AnyArg(), "user-1", "song-a", "", "", 0, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := s.AddHistoryEntry(context.Background(), "user-1", HistoryEntry{SongID: "song-a"})
	if err != nil {
		t.Fatalf("AddHistoryEntry: %v", err)
	}
	if entry.Position != 1 {
		t.Fatalf("expected position 1, got %d", entry.Position)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListHistoryFiltersAndPaginates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*)
		FROM history
		WHERE user_id = $1
		  AND song_name ILIKE $2
	`)).
		WithArgs("user-1", "%love%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	played := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, song_id, song_name, artist_name, seconds, position, played_at
		FROM history
		WHERE user_id = $1
		  AND song_name ILIKE $2
		ORDER BY position ASC
		OFFSET $3 LIMIT $4
	`)).
		WithArgs("user-1", "%love%", 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "song_id", "song_name", "artist_name", "seconds", "position", "played_at",
		}).
			AddRow("row-3", "user-1", "song-c", "Lovefingers", "Silver Apples", 130, 3, played).
			AddRow("row-4", "user-1", "song-d", "Love Cats", "The Cure", 210, 4, played))

	page, err := s.ListHistory(context.Background(), "user-1", 2, 2, HistoryFilter{Search: "love"})
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || page.Page != 2 {
		t.Fatalf("unexpected pagination: %#v", page)
	}
	if len(page.Entries) != 2 || page.Entries[0].SongName != "Lovefingers" {
		t.Fatalf("unexpected entries: %#v", page.Entries)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListHistoryDefaultsPageAndLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*)
		FROM history
		WHERE user_id = $1
	`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, song_id, song_name, artist_name, seconds, position, played_at
		FROM history
		WHERE user_id = $1
		ORDER BY position ASC
		OFFSET $2 LIMIT $3
	`)).
		WithArgs("user-1", 0, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "song_id", "song_name", "artist_name", "seconds", "position", "played_at",
		}))

	page, err := s.ListHistory(context.Background(), "user-1", 0, 0, HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if page.Page != 1 || page.Limit != 10 || page.TotalPages != 1 {
		t.Fatalf("unexpected defaults: %#v", page)
	}
	if len(page.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(page.Entries))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveHistoryEntryRemovesMostRecentPlay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// song-a was played twice; the entry at position 1 is the most recent.
	mock.ExpectBegin()
	expectHistoryLock(mock, "user-1", historyScopeRows(
		[3]any{"row-1", "song-a", 1},
		[3]any{"row-2", "song-b", 2},
		[3]any{"row-3", "song-a", 3},
	))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM history WHERE id = $1`)).
		WithArgs("row-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`
		UPDATE history
		SET position = $1
		WHERE id = $2
	`))
	prep.ExpectExec().WithArgs(1, "row-2").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(2, "row-3").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.RemoveHistoryEntry(context.Background(), "user-1", "song-a"); err != nil {
		t.Fatalf("RemoveHistoryEntry: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveHistoryEntryNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	expectHistoryLock(mock, "user-1", historyScopeRows())
	mock.ExpectRollback()

	err = s.RemoveHistoryEntry(context.Background(), "user-1", "song-z")
	if !errors.Is(err, ErrHistoryEntryNotFound) {
		t.Fatalf("expected ErrHistoryEntryNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClearHistory(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "entries removed", affected: 7, want: true},
		{name: "already empty", affected: 0, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			s := New(db)

			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM history WHERE user_id = $1`)).
				WithArgs("user-1").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			cleared, err := s.ClearHistory(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("ClearHistory: %v", err)
			}
			if cleared != tc.want {
				t.Fatalf("expected cleared=%v, got %v", tc.want, cleared)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}
