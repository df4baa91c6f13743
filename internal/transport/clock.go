// Package transport drives tempo-synchronized playback of a sequencer
// program. Ticks are scheduled against a fixed monotonic anchor so jitter in
// any single wakeup never accumulates into drift.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/leandrodaf/solfa/internal/program"
	"github.com/leandrodaf/solfa/sdk/contracts"
	"golang.org/x/exp/constraints"
)

// Error definitions for transport lifecycle violations.
var (
	ErrDisposed     = errors.New("transport clock is disposed")
	ErrPlaying      = errors.New("transport is already playing")
	ErrEmptyProgram = errors.New("program has no beats")
)

// Clock runs the Stopped -> Playing -> Stopped state machine. There is no
// paused state: stopping always resets the position to step 0.
type Clock struct {
	logger      contracts.Logger
	subdivision int

	mu          sync.Mutex
	playing     bool
	disposed    bool
	tempo       float64
	currentStep int
	prog        *program.Program
	stopCh      chan struct{}
	doneCh      chan struct{}

	disposeOnce sync.Once
}

// NewClock creates a stopped clock. Subdivision is the number of ticks per
// beat; 4 gives sixteenth-note steps.
func NewClock(logger contracts.Logger, subdivision int) *Clock {
	if subdivision < 1 {
		subdivision = 4
	}
	return &Clock{logger: logger, subdivision: subdivision, tempo: 120}
}

// Start begins playback of the program over the given number of steps.
// Tempo is clamped to [MinTempo, MaxTempo]; pass 0 to play at the clock's
// stored tempo. The program is locked against edits until Stop. Starting an
// empty program, a playing clock or a disposed clock fails.
func (c *Clock) Start(prog *program.Program, steps int, tempo float64, onBeat contracts.BeatFunc, onStep contracts.StepFunc) error {
	if steps < 1 || prog == nil || prog.Len() == 0 {
		return ErrEmptyProgram
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.playing {
		c.mu.Unlock()
		return ErrPlaying
	}
	if tempo > 0 {
		c.tempo = clamp(tempo, contracts.MinTempo, contracts.MaxTempo)
	}
	interval := time.Duration(float64(time.Minute) / (c.tempo * float64(c.subdivision)))

	prog.Lock()
	c.prog = prog
	c.playing = true
	c.currentStep = 0
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	stop, done := c.stopCh, c.doneCh
	c.mu.Unlock()

	c.logger.Info("transport started",
		c.logger.Field().Float64("tempo", c.tempo),
		c.logger.Field().Int("steps", steps),
		c.logger.Field().Duration("interval", interval))

	go c.run(prog, steps, interval, onBeat, onStep, stop, done)
	return nil
}

// run is the tick loop. Every trigger time is anchor + tick*interval; when a
// wakeup is more than one interval late (suspended process, starved
// scheduler) the loop resynchronizes to the next future boundary instead of
// burst-firing the missed ticks.
func (c *Clock) run(prog *program.Program, steps int, interval time.Duration, onBeat contracts.BeatFunc, onStep contracts.StepFunc, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	anchor := time.Now()
	var tick int64

	for {
		scheduledAt := anchor.Add(time.Duration(tick) * interval)
		now := time.Now()

		if late := now.Sub(scheduledAt); late > interval {
			skipped := int64(late / interval)
			tick += skipped
			c.logger.Warn("transport overran; resynchronizing to next tick boundary",
				c.logger.Field().Int64("skippedTicks", skipped))
			continue
		}

		if wait := scheduledAt.Sub(now); wait > 0 {
			timer.Reset(wait)
			select {
			case <-stop:
				return
			case <-timer.C:
			}
		}

		// A stop that raced the timer wins; never fire past it.
		select {
		case <-stop:
			return
		default:
		}

		step := int(tick % int64(steps))
		c.mu.Lock()
		c.currentStep = step
		c.mu.Unlock()

		if onStep != nil {
			onStep(step, scheduledAt)
		}
		if onBeat != nil {
			for _, b := range prog.BeatsAt(step) {
				onBeat(b, scheduledAt)
			}
		}
		tick++
	}
}

// Stop cancels playback. It is synchronous: once Stop returns, no further
// onStep or onBeat callback will fire, the position is back at step 0 and
// the program is editable again. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.playing {
		done := c.doneCh
		c.mu.Unlock()
		if done != nil {
			// Another goroutine initiated the stop; wait for it to settle.
			<-done
		}
		return
	}
	c.playing = false
	stop, done := c.stopCh, c.doneCh
	prog := c.prog
	c.prog = nil
	c.mu.Unlock()

	close(stop)
	<-done

	c.mu.Lock()
	c.currentStep = 0
	c.mu.Unlock()

	if prog != nil {
		prog.Unlock()
	}
	c.logger.Info("transport stopped")
}

// Dispose tears the clock down for good. It stops playback first; Start
// afterwards fails with ErrDisposed. Disposing twice is safe and does not
// repeat the teardown.
func (c *Clock) Dispose() {
	c.disposeOnce.Do(func() {
		c.Stop()
		c.mu.Lock()
		c.disposed = true
		c.mu.Unlock()
		c.logger.Info("transport clock disposed")
	})
}

// SetTempo updates the stored tempo used by the next Start. The tempo of a
// playing transport is immutable; callers get ErrPlaying instead of a
// mid-playback rate change.
func (c *Clock) SetTempo(bpm float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		return ErrPlaying
	}
	c.tempo = clamp(bpm, contracts.MinTempo, contracts.MaxTempo)
	return nil
}

// State returns a snapshot of the transport.
func (c *Clock) State() contracts.TransportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return contracts.TransportState{
		Playing:     c.playing,
		Tempo:       c.tempo,
		CurrentStep: c.currentStep,
	}
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
