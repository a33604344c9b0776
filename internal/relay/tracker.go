package relay

import "fillRelay/internal/model"

const defaultDedupCap = 1000

// Tracker owns the cursor and the bounded recency set of processed
// signatures. It is mutated only from the feed's single poll loop, so no
// locking is needed.
type Tracker struct {
	cursor model.Cursor
	cap    int
	order  []string
	index  map[string]struct{}
}

func NewTracker(cap int) *Tracker {
	if cap <= 0 {
		cap = defaultDedupCap
	}
	return &Tracker{
		cap:   cap,
		index: make(map[string]struct{}),
	}
}

// Cursor returns the current low-water mark.
func (t *Tracker) Cursor() model.Cursor {
	return t.cursor
}

// Reset seeds the cursor, used at startup from the latest finalized
// program signature.
func (t *Tracker) Reset(ref model.SignatureRef) {
	t.cursor = model.Cursor{LastSignature: ref.ID, LastSlot: ref.Slot}
}

// ShouldProcess reports whether a signature still needs handling: false for
// signatures already in the recency set, and for signatures older than the
// cursor slot. The slot check protects against market-scoped queries
// returning entries older than the global cursor.
func (t *Tracker) ShouldProcess(ref model.SignatureRef) bool {
	if _, ok := t.index[ref.ID]; ok {
		return false
	}
	if ref.Slot < t.cursor.LastSlot {
		return false
	}
	return true
}

// MarkProcessed records a signature in the recency set. Insertion order
// approximates recency for trimming.
func (t *Tracker) MarkProcessed(ref model.SignatureRef) {
	if _, ok := t.index[ref.ID]; ok {
		return
	}
	t.index[ref.ID] = struct{}{}
	t.order = append(t.order, ref.ID)
}

// Advance moves the cursor to the chronologically last signature of a
// completed cycle.
func (t *Tracker) Advance(ref model.SignatureRef) {
	t.cursor = model.Cursor{LastSignature: ref.ID, LastSlot: ref.Slot}
}

// Trim caps the recency set, dropping the oldest entries first.
func (t *Tracker) Trim() {
	if len(t.order) <= t.cap {
		return
	}
	drop := len(t.order) - t.cap
	for _, id := range t.order[:drop] {
		delete(t.index, id)
	}
	t.order = append(t.order[:0:0], t.order[drop:]...)
}

// Size returns the number of signatures currently in the recency set.
func (t *Tracker) Size() int {
	return len(t.order)
}
