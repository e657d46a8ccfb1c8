package ordering

import (
	"errors"
	"testing"
)

func snapshotOf(refs ...string) []Entry {
	entries := make([]Entry, len(refs))
	for i, ref := range refs {
		entries[i] = Entry{Ref: ref, Position: i + 1}
	}
	return entries
}

func applyTo(t *testing.T, snapshot []Entry, changes []Change) []Entry {
	t.Helper()
	result := make([]Entry, len(snapshot))
	copy(result, snapshot)
	for _, c := range changes {
		found := false
		for i := range result {
			if result[i].Ref == c.Ref {
				result[i].Position = c.Position
				found = true
			}
		}
		if !found {
			t.Fatalf("change references unknown ref %q", c.Ref)
		}
	}
	return result
}

func assertOrder(t *testing.T, entries []Entry, want []string) {
	t.Helper()
	if err := Validate(entries); err != nil {
		t.Fatalf("density invariant broken: %v", err)
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	byPos := make([]string, len(entries))
	for _, e := range entries {
		byPos[e.Position-1] = e.Ref
	}
	for i, ref := range want {
		if byPos[i] != ref {
			t.Fatalf("position %d: expected %q, got %q (full order %v)", i+1, ref, byPos[i], byPos)
		}
	}
}

func TestInsertAppend(t *testing.T) {
	pos, changes := Insert(Append, snapshotOf("a", "b", "c"))
	if pos != 4 {
		t.Fatalf("expected append position 4, got %d", pos)
	}
	if len(changes) != 0 {
		t.Fatalf("append must not shift existing entries, got %d changes", len(changes))
	}

	pos, _ = Insert(Append, nil)
	if pos != 1 {
		t.Fatalf("expected position 1 for empty scope, got %d", pos)
	}
}

func TestInsertPushFront(t *testing.T) {
	snapshot := snapshotOf("a", "b")
	pos, changes := Insert(PushFront, snapshot)
	if pos != 1 {
		t.Fatalf("expected push-front position 1, got %d", pos)
	}
	shifted := applyTo(t, snapshot, changes)
	for _, e := range shifted {
		switch e.Ref {
		case "a":
			if e.Position != 2 {
				t.Fatalf("expected a at 2, got %d", e.Position)
			}
		case "b":
			if e.Position != 3 {
				t.Fatalf("expected b at 3, got %d", e.Position)
			}
		}
	}
}

func TestPushFrontSequence(t *testing.T) {
	// Adding A then B then C must leave the order [C, B, A].
	var entries []Entry
	for _, ref := range []string{"A", "B", "C"} {
		pos, changes := Insert(PushFront, entries)
		entries = applyTo(t, entries, changes)
		entries = append(entries, Entry{Ref: ref, Position: pos})
	}
	assertOrder(t, entries, []string{"C", "B", "A"})
}

func TestRemove(t *testing.T) {
	snapshot := snapshotOf("a", "b", "c")

	changes, removedPos, ok := Remove(snapshot, "b")
	if !ok {
		t.Fatalf("expected b to be found")
	}
	if removedPos != 2 {
		t.Fatalf("expected removed position 2, got %d", removedPos)
	}
	if len(changes) != 1 || changes[0].Ref != "c" || changes[0].Position != 2 {
		t.Fatalf("expected only c to shift to 2, got %v", changes)
	}

	if _, _, ok := Remove(snapshot, "zz"); ok {
		t.Fatalf("expected unknown ref to report not found")
	}
}

func TestMoveTo(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		newPos int
		want   []string
	}{
		{name: "move forward", ref: "a", newPos: 3, want: []string{"b", "c", "a", "d"}},
		{name: "move backward", ref: "d", newPos: 2, want: []string{"a", "d", "b", "c"}},
		{name: "no-op move", ref: "b", newPos: 2, want: []string{"a", "b", "c", "d"}},
		{name: "to front", ref: "c", newPos: 1, want: []string{"c", "a", "b", "d"}},
		{name: "to back", ref: "a", newPos: 4, want: []string{"b", "c", "d", "a"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := snapshotOf("a", "b", "c", "d")
			changes, err := MoveTo(snapshot, tc.ref, tc.newPos)
			if err != nil {
				t.Fatalf("MoveTo error: %v", err)
			}
			assertOrder(t, applyTo(t, snapshot, changes), tc.want)
		})
	}
}

func TestMoveToNoOpProducesNoChanges(t *testing.T) {
	changes, err := MoveTo(snapshotOf("a", "b", "c"), "b", 2)
	if err != nil {
		t.Fatalf("MoveTo error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected no changes for a no-op move, got %v", changes)
	}
}

func TestMoveToValidation(t *testing.T) {
	snapshot := snapshotOf("a", "b", "c")

	if _, err := MoveTo(snapshot, "a", 0); !errors.Is(err, ErrPositionOutOfRange) {
		t.Fatalf("expected ErrPositionOutOfRange for position 0, got %v", err)
	}
	if _, err := MoveTo(snapshot, "a", 4); !errors.Is(err, ErrPositionOutOfRange) {
		t.Fatalf("expected ErrPositionOutOfRange for position past N, got %v", err)
	}
	if _, err := MoveTo(snapshot, "nope", 1); !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("expected ErrUnknownRef, got %v", err)
	}
}

func TestReorderSwap(t *testing.T) {
	snapshot := snapshotOf("a", "b")
	changes, err := Reorder(snapshot, []Move{
		{Ref: "b", Position: 1},
		{Ref: "a", Position: 2},
	})
	if err != nil {
		t.Fatalf("Reorder error: %v", err)
	}
	assertOrder(t, applyTo(t, snapshot, changes), []string{"b", "a"})
}

func TestReorderLaterMovesSeeEarlierEffects(t *testing.T) {
	// Moving a to the back shifts everything, and the second move is applied
	// against that intermediate ordering, not the original snapshot.
	snapshot := snapshotOf("a", "b", "c", "d")
	changes, err := Reorder(snapshot, []Move{
		{Ref: "a", Position: 4}, // -> [b, c, d, a]
		{Ref: "d", Position: 1}, // -> [d, b, c, a]
	})
	if err != nil {
		t.Fatalf("Reorder error: %v", err)
	}
	assertOrder(t, applyTo(t, snapshot, changes), []string{"d", "b", "c", "a"})
}

func TestReorderRejectsWholeBatch(t *testing.T) {
	snapshot := snapshotOf("a", "b")

	tests := []struct {
		name  string
		moves []Move
		want  error
	}{
		{
			name:  "unknown ref in second pair",
			moves: []Move{{Ref: "b", Position: 1}, {Ref: "ghost", Position: 2}},
			want:  ErrUnknownRef,
		},
		{
			name:  "out of range in second pair",
			moves: []Move{{Ref: "b", Position: 1}, {Ref: "a", Position: 3}},
			want:  ErrPositionOutOfRange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			changes, err := Reorder(snapshot, tc.moves)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if changes != nil {
				t.Fatalf("rejected batch must produce no changes, got %v", changes)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(snapshotOf("a", "b", "c")); err != nil {
		t.Fatalf("expected dense snapshot to validate, got %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Fatalf("expected empty snapshot to validate, got %v", err)
	}

	gap := []Entry{{Ref: "a", Position: 1}, {Ref: "b", Position: 3}}
	if err := Validate(gap); !errors.Is(err, ErrCorruptScope) {
		t.Fatalf("expected ErrCorruptScope for gapped positions, got %v", err)
	}

	dup := []Entry{{Ref: "a", Position: 1}, {Ref: "b", Position: 1}}
	if err := Validate(dup); !errors.Is(err, ErrCorruptScope) {
		t.Fatalf("expected ErrCorruptScope for duplicate positions, got %v", err)
	}
}

func TestDensityInvariantUnderRandomishSequence(t *testing.T) {
	// A mixed sequence of inserts, removals and moves must keep the scope
	// dense at every step.
	var entries []Entry

	addFront := func(ref string) {
		pos, changes := Insert(PushFront, entries)
		entries = applyTo(t, entries, changes)
		entries = append(entries, Entry{Ref: ref, Position: pos})
	}
	addBack := func(ref string) {
		pos, changes := Insert(Append, entries)
		entries = applyTo(t, entries, changes)
		entries = append(entries, Entry{Ref: ref, Position: pos})
	}
	remove := func(ref string) {
		changes, _, ok := Remove(entries, ref)
		if !ok {
			t.Fatalf("remove %q: not found", ref)
		}
		var kept []Entry
		for _, e := range entries {
			if e.Ref != ref {
				kept = append(kept, e)
			}
		}
		entries = applyTo(t, kept, changes)
	}
	move := func(ref string, pos int) {
		changes, err := MoveTo(entries, ref, pos)
		if err != nil {
			t.Fatalf("move %q to %d: %v", ref, pos, err)
		}
		entries = applyTo(t, entries, changes)
	}

	addBack("a")
	addBack("b")
	addFront("c")
	addBack("d")
	move("d", 1)
	remove("b")
	addFront("e")
	move("a", 2)
	remove("d")

	if err := Validate(entries); err != nil {
		t.Fatalf("final scope not dense: %v", err)
	}
	assertOrder(t, entries, []string{"e", "a", "c"})
}
