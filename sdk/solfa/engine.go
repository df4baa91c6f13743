// Package solfa is the public entry point of the note engine: a polyphonic
// solfège instrument with a step-sequencer transport.
package solfa

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leandrodaf/solfa/internal/bus"
	"github.com/leandrodaf/solfa/internal/display"
	"github.com/leandrodaf/solfa/internal/program"
	"github.com/leandrodaf/solfa/internal/registry"
	"github.com/leandrodaf/solfa/internal/transport"
	"github.com/leandrodaf/solfa/sdk/contracts"
)

// ErrEngineClosed is returned when operating a closed engine.
var ErrEngineClosed = errors.New("engine is closed")

// Subscriber names the engine registers on its own bus.
const displaySubscriber = "display"

// Engine wires the note registry, transport clock, sequencer program, event
// bus and transient display together. The registry is the single writer of
// note state; everything else observes it through bus events or snapshots.
type Engine struct {
	logger contracts.Logger
	synth  contracts.Synthesizer

	bus      *bus.Bus
	registry *registry.Registry
	clock    *transport.Clock
	prog     *program.Program
	acc      *display.Accumulator

	stepListener contracts.StepFunc

	mu      sync.Mutex
	pending map[string]int // transport-owned note id -> steps until release
	closed  bool
}

// New creates an engine with the given options. It applies defaults for
// everything not provided and subscribes the transient display to the note
// event bus.
func New(opts ...contracts.Option) (*Engine, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	b := bus.New(options.Logger)
	e := &Engine{
		logger:       options.Logger,
		synth:        options.Synth,
		bus:          b,
		registry:     registry.New(options.Logger, options.Synth, b, options.Key, options.Mode, options.Velocity),
		clock:        transport.NewClock(options.Logger, options.Subdivision),
		prog:         program.New(options.Steps),
		acc:          display.New(options.Logger, options.MaxDisplayNotes, options.Display),
		stepListener: options.StepListener,
		pending:      make(map[string]int),
	}

	if err := e.bus.Subscribe(displaySubscriber, 0, e.acc.Observe); err != nil {
		return nil, err
	}

	options.Logger.Info("note engine created",
		options.Logger.Field().String("key", options.Key.String()),
		options.Logger.Field().Int("steps", options.Steps))
	return e, nil
}

// Attack sounds a note from a live gesture. It reports ok=false when the
// synthesizer is not ready yet or the note cannot be resolved; both are
// recoverable, the caller simply retries on the next gesture.
func (e *Engine) Attack(ctx context.Context, degree contracts.SolfegeDegree, octave int) (contracts.NoteRecord, bool) {
	return e.registry.Attack(ctx, degree, octave)
}

// Release stops a live note. Releasing an unknown id is a no-op.
func (e *Engine) Release(noteID string) bool {
	return e.registry.Release(noteID)
}

// ReleaseAll silences every sounding note.
func (e *Engine) ReleaseAll() int {
	return e.registry.ReleaseAll()
}

// Active returns the sounding notes in attack order.
func (e *Engine) Active() []contracts.NoteRecord {
	return e.registry.Active()
}

// Play starts transport playback of the program at the given tempo. Pass 0
// to keep the current tempo. The program is locked against edits until Stop.
func (e *Engine) Play(tempo float64) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.mu.Unlock()

	return e.clock.Start(e.prog, e.prog.Steps(), tempo, e.onBeat, e.onStep)
}

// StopPlayback stops the transport and releases every note it attacked. By
// the time it returns, no transport callback will fire again and no
// transport-owned note is still sounding.
func (e *Engine) StopPlayback() {
	e.clock.Stop()

	e.mu.Lock()
	ids := make([]string, 0, len(e.pending))
	for id := range e.pending {
		ids = append(ids, id)
	}
	e.pending = make(map[string]int)
	e.mu.Unlock()

	for _, id := range ids {
		e.registry.Release(id)
	}
}

// onStep runs on the clock goroutine before any beat of the same tick, so a
// note attacked on this tick is never aged by it.
func (e *Engine) onStep(step int, scheduledAt time.Time) {
	var due []string
	e.mu.Lock()
	for id, remaining := range e.pending {
		remaining--
		if remaining <= 0 {
			due = append(due, id)
			delete(e.pending, id)
			continue
		}
		e.pending[id] = remaining
	}
	e.mu.Unlock()

	for _, id := range due {
		e.registry.Release(id)
	}

	if e.stepListener != nil {
		e.stepListener(step, scheduledAt)
	}
}

func (e *Engine) onBeat(b contracts.Beat, _ time.Time) {
	rec, ok := e.registry.Attack(context.Background(), b.Solfege, b.Octave)
	if !ok {
		return
	}
	e.mu.Lock()
	e.pending[rec.NoteID] = b.DurationSteps
	e.mu.Unlock()
}

// SetTempo changes the stored tempo. Fails with transport.ErrPlaying while
// the transport runs; the tempo of a live performance is immutable.
func (e *Engine) SetTempo(bpm float64) error {
	return e.clock.SetTempo(bpm)
}

// State returns a snapshot of the transport.
func (e *Engine) State() contracts.TransportState {
	return e.clock.State()
}

// Program returns the sequencer program for editing while stopped.
func (e *Engine) Program() *program.Program {
	return e.prog
}

// Display returns the transient note display session.
func (e *Engine) Display() *display.Accumulator {
	return e.acc
}

// Subscribe registers an external collaborator (visual engine, recorder) on
// the note event bus.
func (e *Engine) Subscribe(name string, buffer int, handler func(contracts.NoteEvent)) error {
	return e.bus.Subscribe(name, buffer, handler)
}

// Devices lists the output devices of the synthesizer backend.
func (e *Engine) Devices() ([]contracts.DeviceInfo, error) {
	return e.synth.Devices()
}

// Close tears the engine down: playback stopped, notes released, clock
// disposed, bus drained, synthesizer closed. Closing twice is safe.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.StopPlayback()
	e.clock.Dispose()
	e.registry.ReleaseAll()
	e.acc.Clear()
	e.bus.Close()
	return e.synth.Close()
}
