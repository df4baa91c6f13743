// Package registry is the single source of truth for which notes are
// currently sounding. All attack and release requests flow through it; no
// other component mutates note state.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leandrodaf/solfa/internal/pitch"
	"github.com/leandrodaf/solfa/sdk/contracts"
)

// Publisher receives the attack/release events the registry emits.
type Publisher interface {
	Publish(contracts.NoteEvent)
}

type entry struct {
	record contracts.NoteRecord
	handle contracts.ToneHandle
}

// Registry maps note ids to sounding-note records. Re-attacking a degree and
// octave that is already sounding allocates a fresh id rather than reusing
// the existing one, so layered voices on the same pitch each keep their own
// lifecycle.
type Registry struct {
	logger   contracts.Logger
	synth    contracts.Synthesizer
	pub      Publisher
	key      contracts.Key
	mode     contracts.Mode
	velocity uint8

	mu    sync.Mutex
	notes map[string]entry
	order []string // note ids in attack order; first entry is the primary note
}

// New creates a registry resolving notes against the given key and mode.
func New(logger contracts.Logger, synth contracts.Synthesizer, pub Publisher, key contracts.Key, mode contracts.Mode, velocity uint8) *Registry {
	return &Registry{
		logger:   logger,
		synth:    synth,
		pub:      pub,
		key:      key,
		mode:     mode,
		velocity: velocity,
		notes:    make(map[string]entry),
	}
}

// Attack resolves and sounds a note, records it under a fresh id and
// publishes an attack event. It reports ok=false without touching registry
// state when the degree or octave is invalid, the synthesizer is not ready
// yet, or the tone could not be started; none of those conditions are fatal
// during a performance.
func (r *Registry) Attack(ctx context.Context, degree contracts.SolfegeDegree, octave int) (contracts.NoteRecord, bool) {
	resolved, err := pitch.Resolve(r.key, r.mode, degree, octave)
	if err != nil {
		r.logger.Warn("ignoring attack of unresolvable note",
			r.logger.Field().Error("error", err),
			r.logger.Field().Int("degree", int(degree)),
			r.logger.Field().Int("octave", octave))
		return contracts.NoteRecord{}, false
	}

	ready, err := r.synth.EnsureReady(ctx)
	if err != nil {
		r.logger.Warn("synthesizer readiness check failed",
			r.logger.Field().Error("error", err))
		return contracts.NoteRecord{}, false
	}
	if !ready {
		r.logger.Debug("synthesizer not ready; attack skipped",
			r.logger.Field().String("note", resolved.Name))
		return contracts.NoteRecord{}, false
	}

	handle, err := r.synth.AttackTone(resolved.MIDIKey, r.velocity)
	if err != nil {
		r.logger.Error("failed to attack tone",
			r.logger.Field().Error("error", err),
			r.logger.Field().String("note", resolved.Name))
		return contracts.NoteRecord{}, false
	}

	record := contracts.NoteRecord{
		NoteID:    uuid.NewString(),
		Solfege:   degree,
		Octave:    octave,
		NoteName:  resolved.Name,
		MIDIKey:   resolved.MIDIKey,
		StartedAt: time.Now(),
	}

	r.mu.Lock()
	r.notes[record.NoteID] = entry{record: record, handle: handle}
	r.order = append(r.order, record.NoteID)
	// Published under the lock so no subscriber can observe a release for
	// this id before its attack.
	r.pub.Publish(contracts.NoteEvent{Kind: contracts.NoteAttack, NoteID: record.NoteID, Record: record})
	r.mu.Unlock()

	return record, true
}

// Release removes the note and publishes a release event. Releasing an id
// that is not active is a no-op; overlapping gesture-end events (touch and
// mouse both firing) make double releases routine, not errors. It reports
// whether a note was actually removed.
func (r *Registry) Release(noteID string) bool {
	r.mu.Lock()
	e, ok := r.notes[noteID]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.notes, noteID)
	r.removeFromOrder(noteID)
	r.pub.Publish(contracts.NoteEvent{Kind: contracts.NoteRelease, NoteID: noteID, Record: e.record})
	r.mu.Unlock()

	if err := r.synth.ReleaseTone(e.handle); err != nil {
		r.logger.Warn("failed to release tone",
			r.logger.Field().Error("error", err),
			r.logger.Field().String("note", e.record.NoteName))
	}
	return true
}

// ReleaseAll removes every active note, publishing one release event per
// removed record so display accumulators never leak entries. It returns the
// number of notes released.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	released := make([]entry, 0, len(r.order))
	for _, id := range r.order {
		e := r.notes[id]
		released = append(released, e)
		delete(r.notes, id)
		r.pub.Publish(contracts.NoteEvent{Kind: contracts.NoteRelease, NoteID: id, Record: e.record})
	}
	r.order = r.order[:0]
	r.mu.Unlock()

	for _, e := range released {
		if err := r.synth.ReleaseTone(e.handle); err != nil {
			r.logger.Warn("failed to release tone",
				r.logger.Field().Error("error", err),
				r.logger.Field().String("note", e.record.NoteName))
		}
	}
	return len(released)
}

// Active returns a snapshot of the sounding notes ordered by attack time,
// ascending. The snapshot does not alias registry state.
func (r *Registry) Active() []contracts.NoteRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]contracts.NoteRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.notes[id].record)
	}
	return out
}

// Len reports how many notes are currently sounding.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

func (r *Registry) removeFromOrder(noteID string) {
	for i, id := range r.order {
		if id == noteID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
