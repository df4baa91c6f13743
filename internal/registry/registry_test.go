package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leandrodaf/solfa/internal/logger"
	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	mu        sync.Mutex
	ready     bool
	attackErr error
	next      contracts.ToneHandle
	sounding  map[contracts.ToneHandle]uint8
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{ready: true, sounding: make(map[contracts.ToneHandle]uint8)}
}

func (s *fakeSynth) EnsureReady(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready, nil
}

func (s *fakeSynth) AttackTone(key uint8, _ uint8) (contracts.ToneHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attackErr != nil {
		return 0, s.attackErr
	}
	s.next++
	s.sounding[s.next] = key
	return s.next, nil
}

func (s *fakeSynth) ReleaseTone(h contracts.ToneHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sounding, h)
	return nil
}

func (s *fakeSynth) Devices() ([]contracts.DeviceInfo, error) { return nil, nil }
func (s *fakeSynth) Close() error                             { return nil }

func (s *fakeSynth) soundingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sounding)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []contracts.NoteEvent
}

func (p *recordingPublisher) Publish(ev contracts.NoteEvent) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

func (p *recordingPublisher) snapshot() []contracts.NoteEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]contracts.NoteEvent(nil), p.events...)
}

func newTestRegistry(synth *fakeSynth, pub Publisher) *Registry {
	return New(logger.NewNopLogger(), synth, pub, contracts.KeyC, contracts.MajorMode, 96)
}

func TestAttackAllocatesUniqueIds(t *testing.T) {
	synth := newFakeSynth()
	pub := &recordingPublisher{}
	r := newTestRegistry(synth, pub)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		rec, ok := r.Attack(context.Background(), contracts.Do, 4)
		require.True(t, ok)
		assert.False(t, seen[rec.NoteID], "id reused: %s", rec.NoteID)
		seen[rec.NoteID] = true
	}
	assert.Equal(t, 10, r.Len())
	assert.Equal(t, 10, synth.soundingCount())
}

func TestActiveSnapshotOrderedByAttack(t *testing.T) {
	synth := newFakeSynth()
	r := newTestRegistry(synth, &recordingPublisher{})

	first, ok := r.Attack(context.Background(), contracts.Do, 4)
	require.True(t, ok)
	second, ok := r.Attack(context.Background(), contracts.Mi, 4)
	require.True(t, ok)
	third, ok := r.Attack(context.Background(), contracts.Sol, 5)
	require.True(t, ok)

	active := r.Active()
	require.Len(t, active, 3)
	assert.Equal(t, first.NoteID, active[0].NoteID)
	assert.Equal(t, second.NoteID, active[1].NoteID)
	assert.Equal(t, third.NoteID, active[2].NoteID)

	// Releasing the primary promotes the next oldest.
	r.Release(first.NoteID)
	active = r.Active()
	require.Len(t, active, 2)
	assert.Equal(t, second.NoteID, active[0].NoteID)
}

func TestReleaseIsIdempotent(t *testing.T) {
	synth := newFakeSynth()
	pub := &recordingPublisher{}
	r := newTestRegistry(synth, pub)

	rec, ok := r.Attack(context.Background(), contracts.Re, 3)
	require.True(t, ok)

	assert.True(t, r.Release(rec.NoteID))
	assert.False(t, r.Release(rec.NoteID))
	assert.False(t, r.Release("no-such-id"))

	// Exactly one attack and one release published.
	events := pub.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, contracts.NoteAttack, events[0].Kind)
	assert.Equal(t, contracts.NoteRelease, events[1].Kind)
	assert.Equal(t, rec.NoteID, events[1].NoteID)
	assert.Equal(t, rec.NoteName, events[1].Record.NoteName)
}

func TestReleaseAllEmptiesRegistryAndPublishesPerNote(t *testing.T) {
	synth := newFakeSynth()
	pub := &recordingPublisher{}
	r := newTestRegistry(synth, pub)

	for i := 0; i < 4; i++ {
		_, ok := r.Attack(context.Background(), contracts.Fa, 4)
		require.True(t, ok)
	}

	assert.Equal(t, 4, r.ReleaseAll())
	assert.Empty(t, r.Active())
	assert.Equal(t, 0, synth.soundingCount())

	var releases int
	for _, ev := range pub.snapshot() {
		if ev.Kind == contracts.NoteRelease {
			releases++
		}
	}
	assert.Equal(t, 4, releases)

	assert.Equal(t, 0, r.ReleaseAll())
}

func TestAttackWhileSynthUnreadyLeavesStateUntouched(t *testing.T) {
	synth := newFakeSynth()
	synth.ready = false
	pub := &recordingPublisher{}
	r := newTestRegistry(synth, pub)

	_, ok := r.Attack(context.Background(), contracts.Do, 4)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, pub.snapshot())

	// Once the backend unlocks, the next gesture succeeds.
	synth.ready = true
	_, ok = r.Attack(context.Background(), contracts.Do, 4)
	assert.True(t, ok)
}

func TestAttackToneFailureIsAbsorbed(t *testing.T) {
	synth := newFakeSynth()
	synth.attackErr = errors.New("device gone")
	r := newTestRegistry(synth, &recordingPublisher{})

	_, ok := r.Attack(context.Background(), contracts.La, 2)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestInvalidNoteRejectedWithoutPanic(t *testing.T) {
	r := newTestRegistry(newFakeSynth(), &recordingPublisher{})

	_, ok := r.Attack(context.Background(), contracts.SolfegeDegree(9), 4)
	assert.False(t, ok)
	_, ok = r.Attack(context.Background(), contracts.Do, 12)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestLayeredPolyphonySamePitch(t *testing.T) {
	synth := newFakeSynth()
	r := newTestRegistry(synth, &recordingPublisher{})

	a, ok := r.Attack(context.Background(), contracts.Do, 4)
	require.True(t, ok)
	b, ok := r.Attack(context.Background(), contracts.Do, 4)
	require.True(t, ok)

	assert.NotEqual(t, a.NoteID, b.NoteID)
	assert.Equal(t, 2, r.Len())

	// Each voice releases independently.
	r.Release(a.NoteID)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, synth.soundingCount())
}
