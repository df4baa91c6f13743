package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/solfa/internal/logger"
	"github.com/leandrodaf/solfa/internal/program"
	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepCapture struct {
	mu    sync.Mutex
	steps []int
	times []time.Time
}

func (s *stepCapture) onStep(step int, at time.Time) {
	s.mu.Lock()
	s.steps = append(s.steps, step)
	s.times = append(s.times, at)
	s.mu.Unlock()
}

func (s *stepCapture) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

func (s *stepCapture) snapshot() ([]int, []time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.steps...), append([]time.Time(nil), s.times...)
}

func demoProgram(t *testing.T, steps int) *program.Program {
	t.Helper()
	p := program.New(steps)
	require.NoError(t, p.Add(contracts.Beat{Step: 0, Solfege: contracts.Do, Octave: 4, DurationSteps: 1}))
	return p
}

// High subdivision keeps tick intervals in the low milliseconds so tests
// observe many ticks without long sleeps.
func fastClock() *Clock {
	return NewClock(logger.NewNopLogger(), 96)
}

func TestStartRejectsEmptyProgram(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	assert.ErrorIs(t, c.Start(program.New(4), 4, 120, nil, nil), ErrEmptyProgram)
	assert.ErrorIs(t, c.Start(nil, 4, 120, nil, nil), ErrEmptyProgram)
	assert.False(t, c.State().Playing)
}

func TestStepsCycleInOrder(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	const steps = 4
	rec := &stepCapture{}
	prog := demoProgram(t, steps)

	require.NoError(t, c.Start(prog, steps, 120, nil, rec.onStep))
	assert.Eventually(t, func() bool { return rec.count() >= 10 }, 2*time.Second, time.Millisecond)
	c.Stop()

	got, _ := rec.snapshot()
	for i, step := range got {
		assert.Equal(t, i%steps, step, "tick %d out of order", i)
	}
}

func TestScheduledTimesHaveZeroCumulativeDrift(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	rec := &stepCapture{}
	prog := demoProgram(t, 8)

	require.NoError(t, c.Start(prog, 8, 180, nil, rec.onStep))
	assert.Eventually(t, func() bool { return rec.count() >= 40 }, 5*time.Second, time.Millisecond)
	c.Stop()

	// 60s / (180 bpm * 96 ticks per beat)
	ticksPerMinute := float64(180 * 96)
	wantInterval := time.Duration(float64(time.Minute) / ticksPerMinute)

	_, times := rec.snapshot()
	for i := 1; i < len(times); i++ {
		assert.Equal(t, wantInterval, times[i].Sub(times[i-1]),
			"scheduled times must advance by exactly one interval (tick %d)", i)
	}
	// Total scheduled span is exact arithmetic, not a sum of jittery waits.
	assert.Equal(t, time.Duration(len(times)-1)*wantInterval, times[len(times)-1].Sub(times[0]))
}

func TestBeatsFireOnMatchingStepEachPass(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	const steps = 4
	prog := demoProgram(t, steps)

	var mu sync.Mutex
	var beatSteps []int
	stepsSeen := &stepCapture{}

	onBeat := func(b contracts.Beat, _ time.Time) {
		mu.Lock()
		beatSteps = append(beatSteps, b.Step)
		mu.Unlock()
	}

	require.NoError(t, c.Start(prog, steps, 120, onBeat, stepsSeen.onStep))
	assert.Eventually(t, func() bool { return stepsSeen.count() >= steps*3 }, 2*time.Second, time.Millisecond)
	c.Stop()

	got, _ := stepsSeen.snapshot()
	passes := len(got) / steps

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(beatSteps), passes, "beat at step 0 must fire once per loop pass")
	for _, s := range beatSteps {
		assert.Equal(t, 0, s, "beat fired away from its step")
	}
}

func TestOverrunResynchronizesToNextBoundary(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	// Step count larger than any tick this test observes, so the delivered
	// step index equals the tick index and skips are directly visible.
	const steps = 1024
	const slowTick = 2
	prog := demoProgram(t, steps)

	ticksPerMinute := float64(180 * 96)
	interval := time.Duration(float64(time.Minute) / ticksPerMinute)

	rec := &stepCapture{}
	onStep := func(step int, at time.Time) {
		rec.onStep(step, at)
		// One callback overruns several intervals, as a starved scheduler or
		// suspended process would.
		if rec.count() == slowTick+1 {
			time.Sleep(6 * interval)
		}
	}

	require.NoError(t, c.Start(prog, steps, 180, nil, onStep))
	assert.Eventually(t, func() bool { return rec.count() >= slowTick+6 }, 2*time.Second, time.Millisecond)
	c.Stop()

	got, times := rec.snapshot()

	// Never a duplicate or backwards step: missed ticks are skipped, not
	// burst-fired after the overrun.
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1], "tick %d fired out of order", i)
	}

	// The tick after the overrun lands past the missed boundaries.
	require.Greater(t, len(got), slowTick+1)
	assert.GreaterOrEqual(t, got[slowTick+1]-got[slowTick], 2,
		"overrun must skip to a future tick boundary")

	// Every delivered time stays on the anchor grid, including after resync.
	for i := 1; i < len(times); i++ {
		assert.Equal(t, time.Duration(got[i]-got[0])*interval, times[i].Sub(times[0]),
			"tick %d drifted off the anchor grid", i)
	}
}

func TestStopIsSynchronousAndResetsPosition(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	rec := &stepCapture{}
	prog := demoProgram(t, 4)

	require.NoError(t, c.Start(prog, 4, 120, nil, rec.onStep))
	assert.Eventually(t, func() bool { return rec.count() >= 3 }, 2*time.Second, time.Millisecond)

	c.Stop()
	after := rec.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, rec.count(), "callback fired after Stop returned")

	st := c.State()
	assert.False(t, st.Playing)
	assert.Equal(t, 0, st.CurrentStep)

	// Program is editable again once stopped.
	assert.NoError(t, prog.Add(contracts.Beat{Step: 1, Solfege: contracts.Re, Octave: 4, DurationSteps: 1}))

	// Stopping again is a no-op.
	c.Stop()
}

func TestStartWhilePlayingFails(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	prog := demoProgram(t, 4)
	require.NoError(t, c.Start(prog, 4, 120, nil, nil))
	defer c.Stop()

	assert.ErrorIs(t, c.Start(prog, 4, 120, nil, nil), ErrPlaying)
}

func TestTempoImmutableWhilePlaying(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	prog := demoProgram(t, 4)
	require.NoError(t, c.Start(prog, 4, 120, nil, nil))
	assert.ErrorIs(t, c.SetTempo(90), ErrPlaying)
	c.Stop()

	assert.NoError(t, c.SetTempo(90))
	assert.Equal(t, float64(90), c.State().Tempo)
}

func TestTempoClampedToBounds(t *testing.T) {
	c := fastClock()
	defer c.Dispose()

	require.NoError(t, c.SetTempo(20))
	assert.Equal(t, float64(contracts.MinTempo), c.State().Tempo)

	require.NoError(t, c.SetTempo(900))
	assert.Equal(t, float64(contracts.MaxTempo), c.State().Tempo)
}

func TestDisposeIsIdempotentAndBlocksStart(t *testing.T) {
	c := fastClock()
	prog := demoProgram(t, 4)

	require.NoError(t, c.Start(prog, 4, 120, nil, nil))
	c.Dispose()
	c.Dispose()

	assert.ErrorIs(t, c.Start(prog, 4, 120, nil, nil), ErrDisposed)
	assert.False(t, c.State().Playing)
}
