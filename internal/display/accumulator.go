// Package display merges bursts of note events into a single stable display
// session, so a chord or a fast run reads as one floating label instead of
// flickering per note.
package display

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/leandrodaf/solfa/sdk/contracts"
)

// Defaults applied when the accumulator is configured with zero values.
const (
	DefaultMaxNotes     = 8
	DefaultExtendWindow = 300 * time.Millisecond
	DefaultHideDelay    = 1200 * time.Millisecond
)

// Accumulator buffers recently attacked notes for display. Two timers govern
// the session: the extension window restarts on every arrival and defers the
// decision to hide; the hide delay starts only once the window closes quietly
// and clears the session when it elapses. Each timer role owns at most one
// live handle, replaced and cancelled atomically on restart, and a generation
// counter invalidates handles that fire against state they no longer own.
type Accumulator struct {
	logger    contracts.Logger
	maxNotes  int
	hideDelay time.Duration
	extend    func(func()) // debounced extension window

	mu        sync.Mutex
	notes     map[string]contracts.NoteRecord
	order     []string // display order; mirrors eviction order (FIFO)
	visible   bool
	gen       uint64
	hideTimer *time.Timer
}

// New creates an accumulator. Zero or negative values select the defaults.
func New(logger contracts.Logger, maxNotes int, timing contracts.DisplayTiming) *Accumulator {
	if maxNotes <= 0 {
		maxNotes = DefaultMaxNotes
	}
	window := timing.ExtendWindow
	if window <= 0 {
		window = DefaultExtendWindow
	}
	hide := timing.HideDelay
	if hide <= 0 {
		hide = DefaultHideDelay
	}
	return &Accumulator{
		logger:    logger,
		maxNotes:  maxNotes,
		hideDelay: hide,
		extend:    debounce.New(window),
		notes:     make(map[string]contracts.NoteRecord),
	}
}

// Observe feeds a bus event into the accumulator. Attacks accumulate;
// releases are ignored because the session outlives the notes themselves.
func (a *Accumulator) Observe(ev contracts.NoteEvent) {
	if ev.Kind != contracts.NoteAttack {
		return
	}
	a.Add(ev.Record)
}

// Add inserts a note snapshot and restarts the extension window. When the
// session exceeds capacity the oldest entry is evicted, even if that note is
// still musically sounding; this is display capacity, not musical capacity.
func (a *Accumulator) Add(rec contracts.NoteRecord) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	if a.hideTimer != nil {
		a.hideTimer.Stop()
		a.hideTimer = nil
	}
	if _, tracked := a.notes[rec.NoteID]; !tracked {
		a.notes[rec.NoteID] = rec
		a.order = append(a.order, rec.NoteID)
		for len(a.order) > a.maxNotes {
			oldest := a.order[0]
			a.order = a.order[1:]
			a.logger.Debug("display session full; evicting oldest note",
				a.logger.Field().String("noteId", oldest))
			delete(a.notes, oldest)
		}
	}
	a.visible = true
	a.mu.Unlock()

	a.extend(func() { a.armHide(gen) })
}

// armHide starts the hide delay once the extension window has closed without
// further arrivals. A stale generation means the session was repopulated or
// cleared in the meantime, so the handle is dropped unused.
func (a *Accumulator) armHide(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || len(a.notes) == 0 {
		return
	}
	if a.hideTimer != nil {
		a.hideTimer.Stop()
	}
	a.hideTimer = time.AfterFunc(a.hideDelay, func() { a.hide(gen) })
}

func (a *Accumulator) hide(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		return
	}
	a.clearLocked()
}

// Clear empties the session immediately and invalidates every pending timer,
// so a stale handle can never wipe a session that was repopulated later.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.clearLocked()
}

func (a *Accumulator) clearLocked() {
	if a.hideTimer != nil {
		a.hideTimer.Stop()
		a.hideTimer = nil
	}
	a.notes = make(map[string]contracts.NoteRecord)
	a.order = a.order[:0]
	a.visible = false
}

// Visible reports whether the display session is currently showing.
func (a *Accumulator) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible
}

// Snapshot returns the accumulated notes in display order.
func (a *Accumulator) Snapshot() []contracts.NoteRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]contracts.NoteRecord, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.notes[id])
	}
	return out
}
