// Package projection builds the local lounge timeline from the initial
// window, optimistic echoes and observed feed events. It owns ordering and
// deduplication and performs no I/O, so every reconciliation step is
// independently testable.
package projection

import (
	"github.com/google/uuid"

	"gamelounge/domain/chat"
)

// Timeline is the visible ordered list of one viewer. Entries are kept in
// display order: created_at ascending, ties by id. The caller serializes
// mutation; Timeline itself is not safe for concurrent use.
type Timeline struct {
	entries []chat.Message
	// index maps every known id (real or temporary) to its position.
	index map[uuid.UUID]int
}

func NewTimeline() *Timeline {
	return &Timeline{index: make(map[uuid.UUID]int)}
}

// Load replaces the timeline with the initial window. Rows arrive in
// display order already; Load re-sorts defensively via insert.
func (t *Timeline) Load(rows []chat.Message) {
	t.entries = nil
	t.index = make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		t.insert(row)
	}
}

// AppendPending adds an optimistic echo carrying a temporary id. The echo
// is visible immediately; Reconcile or Drop settles it later.
func (t *Timeline) AppendPending(m chat.Message) {
	m.Pending = true
	t.insert(m)
}

// Reconcile replaces the pending entry tempID with the authoritative row.
// If the feed echo already delivered the real row, the pending entry is
// simply dropped: the list never shows the same logical send twice.
func (t *Timeline) Reconcile(tempID uuid.UUID, row chat.Message) {
	row.Pending = false
	if _, known := t.index[row.ID]; known {
		t.remove(tempID)
		return
	}
	pos, ok := t.index[tempID]
	if !ok {
		// Pending entry vanished (e.g. a rolled-back retry); treat the
		// authoritative row as a plain insert.
		t.insert(row)
		return
	}
	delete(t.index, tempID)
	t.entries[pos] = row
	t.index[row.ID] = pos
	t.restore(pos)
}

// Drop removes a pending echo after a failed write.
func (t *Timeline) Drop(tempID uuid.UUID) {
	t.remove(tempID)
}

// ApplyInsert folds a feed insert in. An id already present, via
// reconciliation or a prior at-least-once redelivery, is a no-op.
func (t *Timeline) ApplyInsert(row chat.Message) {
	if _, known := t.index[row.ID]; known {
		return
	}
	row.Pending = false
	t.insert(row)
}

// ApplyUpdate folds a feed update in. Soft deletions keep their position:
// the entry stays as an inert placeholder with its content blanked.
func (t *Timeline) ApplyUpdate(row chat.Message) {
	pos, ok := t.index[row.ID]
	if !ok {
		return
	}
	row.Pending = false
	if row.IsDeleted {
		row.Content = ""
	}
	// Position is preserved: created_at and id never change on update.
	t.entries[pos] = row
}

// Snapshot returns a copy of the visible list in display order.
func (t *Timeline) Snapshot() []chat.Message {
	out := make([]chat.Message, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int {
	return len(t.entries)
}

// insert places m at its display position, usually the tail.
func (t *Timeline) insert(m chat.Message) {
	pos := len(t.entries)
	for pos > 0 && m.Before(t.entries[pos-1]) {
		pos--
	}
	t.entries = append(t.entries, chat.Message{})
	copy(t.entries[pos+1:], t.entries[pos:])
	t.entries[pos] = m
	t.reindex(pos)
}

func (t *Timeline) remove(id uuid.UUID) {
	pos, ok := t.index[id]
	if !ok {
		return
	}
	delete(t.index, id)
	t.entries = append(t.entries[:pos], t.entries[pos+1:]...)
	t.reindex(pos)
}

// restore re-sorts the entry at pos after a reconciliation swapped its
// timestamp for the authoritative one.
func (t *Timeline) restore(pos int) {
	m := t.entries[pos]
	t.entries = append(t.entries[:pos], t.entries[pos+1:]...)
	delete(t.index, m.ID)
	t.reindex(pos)
	t.insert(m)
}

// reindex refreshes positions from pos to the tail.
func (t *Timeline) reindex(from int) {
	for i := from; i < len(t.entries); i++ {
		t.index[t.entries[i].ID] = i
	}
}
