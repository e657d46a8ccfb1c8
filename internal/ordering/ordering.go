// Package ordering computes position assignments for ordered collections.
//
// Every collection scope (a playlist's songs, a user's liked songs, a user's
// history) stores an explicit 1-based position per row. After any structural
// change the positions of a scope must form the contiguous range 1..N with no
// duplicates and no gaps. The functions in this package are pure: they take a
// snapshot of the current scope ordering plus an operation and return the set
// of rows whose position changes. Persisting the result is the store's job.
package ordering

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrPositionOutOfRange signals a target position outside 1..N.
	ErrPositionOutOfRange = errors.New("position out of range")
	// ErrUnknownRef signals a reference that is not part of the scope.
	ErrUnknownRef = errors.New("item not found in scope")
	// ErrCorruptScope signals a snapshot that violates the density invariant.
	ErrCorruptScope = errors.New("scope positions are not a dense 1..N range")
)

// Policy selects where new items enter a collection.
type Policy int

const (
	// Append places new items after the current last position.
	Append Policy = iota
	// PushFront places new items at position 1 and shifts the rest down.
	PushFront
)

// Entry is one row of a scope snapshot.
type Entry struct {
	Ref      string
	Position int
}

// Change assigns a new position to an existing row.
type Change struct {
	Ref      string
	Position int
}

// Move requests that Ref end up at Position.
type Move struct {
	Ref      string
	Position int
}

// Next returns the position for an appended item given the scope size.
func Next(size int) int {
	return size + 1
}

// Insert returns the position for a new item under the given policy together
// with the shifts required on the existing snapshot. Append never shifts;
// PushFront shifts every existing row down by one.
func Insert(policy Policy, snapshot []Entry) (int, []Change) {
	if policy == Append {
		return Next(len(snapshot)), nil
	}
	changes := make([]Change, 0, len(snapshot))
	for _, e := range snapshot {
		changes = append(changes, Change{Ref: e.Ref, Position: e.Position + 1})
	}
	return 1, changes
}

// Remove returns the shifts required after deleting ref from the scope, and
// the position the removed row held. Rows past the removed position each move
// up by one. The second return is false when ref is not in the snapshot.
func Remove(snapshot []Entry, ref string) ([]Change, int, bool) {
	removed := -1
	for _, e := range snapshot {
		if e.Ref == ref {
			removed = e.Position
			break
		}
	}
	if removed < 0 {
		return nil, 0, false
	}

	var changes []Change
	for _, e := range snapshot {
		if e.Position > removed {
			changes = append(changes, Change{Ref: e.Ref, Position: e.Position - 1})
		}
	}
	return changes, removed, true
}

// MoveTo computes the shifts for moving ref to newPos. Rows between the old
// and new position shift by one toward the vacated slot; everything else is
// untouched. Moving to the current position is a no-op with no changes.
func MoveTo(snapshot []Entry, ref string, newPos int) ([]Change, error) {
	return Reorder(snapshot, []Move{{Ref: ref, Position: newPos}})
}

// Reorder applies a batch of moves. All moves are validated against the
// original snapshot before anything is computed: every ref must exist in the
// scope and every target position must be within 1..N. A single invalid move
// rejects the whole batch.
//
// Valid moves are then applied one at a time, each against the ordering left
// by the previous ones, so later moves observe the effects of earlier moves
// in the same batch. The returned changes are the difference between the
// final ordering and the snapshot.
func Reorder(snapshot []Entry, moves []Move) ([]Change, error) {
	if err := Validate(snapshot); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(snapshot))
	for _, e := range snapshot {
		index[e.Ref] = e.Position
	}

	for _, m := range moves {
		if _, ok := index[m.Ref]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRef, m.Ref)
		}
		if m.Position < 1 || m.Position > len(snapshot) {
			return nil, fmt.Errorf("%w: %d (scope holds %d)", ErrPositionOutOfRange, m.Position, len(snapshot))
		}
	}

	// Working order, index i holds the ref at position i+1.
	order := make([]string, len(snapshot))
	for _, e := range snapshot {
		order[e.Position-1] = e.Ref
	}

	for _, m := range moves {
		from := -1
		for i, ref := range order {
			if ref == m.Ref {
				from = i
				break
			}
		}
		to := m.Position - 1
		if from == to {
			continue
		}
		ref := order[from]
		order = append(order[:from], order[from+1:]...)
		order = append(order[:to], append([]string{ref}, order[to:]...)...)
	}

	var changes []Change
	for i, ref := range order {
		if index[ref] != i+1 {
			changes = append(changes, Change{Ref: ref, Position: i + 1})
		}
	}
	return changes, nil
}

// Validate checks that the snapshot's positions form exactly 1..N.
func Validate(snapshot []Entry) error {
	positions := make([]int, 0, len(snapshot))
	for _, e := range snapshot {
		positions = append(positions, e.Position)
	}
	sort.Ints(positions)
	for i, p := range positions {
		if p != i+1 {
			return fmt.Errorf("%w: found %d at rank %d", ErrCorruptScope, p, i+1)
		}
	}
	return nil
}
