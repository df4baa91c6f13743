// Package bus is the publish/subscribe boundary between the note engine and
// its collaborators (audio backend, visual layer, transient display).
package bus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/solfa/sdk/contracts"
)

// Error definitions for event bus misuse.
var (
	ErrBusClosed      = errors.New("event bus is closed")
	ErrDuplicateTopic = errors.New("subscriber name already registered")
)

// DefaultBuffer is the per-subscriber event buffer used when Subscribe is
// called with a non-positive buffer size.
const DefaultBuffer = 64

// Handler consumes note events for a single subscriber.
type Handler func(contracts.NoteEvent)

type subscriber struct {
	name string
	ch   chan contracts.NoteEvent

	// Note ids whose attack was dropped for this subscriber; the matching
	// release is suppressed so the subscriber never sees a release for a note
	// it never saw attack.
	droppedAttacks map[string]struct{}
}

// Bus fans note events out to independent subscribers. Each subscriber owns a
// buffered channel drained by its own goroutine, so a slow or panicking
// subscriber never blocks delivery to the others. Events published from a
// single goroutine reach every subscriber in publish order.
type Bus struct {
	logger contracts.Logger
	mu     sync.Mutex
	subs   map[string]*subscriber
	wg     sync.WaitGroup
	closed bool
}

// New creates an empty event bus.
func New(logger contracts.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string]*subscriber),
	}
}

// Subscribe registers a named handler. The handler runs on a dedicated
// goroutine; a panic inside it is logged and the subscription keeps running.
func (b *Bus) Subscribe(name string, buffer int, handler Handler) error {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTopic, name)
	}

	sub := &subscriber{
		name:           name,
		ch:             make(chan contracts.NoteEvent, buffer),
		droppedAttacks: make(map[string]struct{}),
	}
	b.subs[name] = sub

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for ev := range sub.ch {
			b.deliver(sub.name, handler, ev)
		}
	}()
	return nil
}

func (b *Bus) deliver(name string, handler Handler, ev contracts.NoteEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked while handling note event",
				b.logger.Field().String("subscriber", name),
				b.logger.Field().String("noteId", ev.NoteID))
		}
	}()
	handler(ev)
}

// Unsubscribe removes a named subscriber. Unknown names are a no-op.
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[name]; ok {
		delete(b.subs, name)
		close(sub.ch)
	}
}

// Publish delivers an event to every subscriber. When a subscriber's buffer
// is full the event is dropped for that subscriber with a warning; delivery
// to the rest is unaffected. A release whose attack was dropped is suppressed
// for that subscriber, so per subscriber every release is preceded by its
// attack.
func (b *Bus) Publish(ev contracts.NoteEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if ev.Kind == contracts.NoteRelease {
			if _, dropped := sub.droppedAttacks[ev.NoteID]; dropped {
				delete(sub.droppedAttacks, ev.NoteID)
				continue
			}
		}
		select {
		case sub.ch <- ev:
		default:
			if ev.Kind == contracts.NoteAttack {
				sub.droppedAttacks[ev.NoteID] = struct{}{}
			}
			b.logger.Warn("subscriber buffer full; dropping note event",
				b.logger.Field().String("subscriber", sub.name),
				b.logger.Field().String("noteId", ev.NoteID))
		}
	}
}

// Close shuts the bus down and waits for in-flight deliveries to finish.
// Further publishes are silently discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for name, sub := range b.subs {
		delete(b.subs, name)
		close(sub.ch)
	}
	b.mu.Unlock()

	b.wg.Wait()
}
