package program

import (
	"testing"

	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beat(step int, d contracts.SolfegeDegree, octave int) contracts.Beat {
	return contracts.Beat{Step: step, Solfege: d, Octave: octave, DurationSteps: 1}
}

func TestAddAndQueryByStep(t *testing.T) {
	p := New(8)

	require.NoError(t, p.Add(beat(3, contracts.Mi, 4)))
	require.NoError(t, p.Add(beat(0, contracts.Do, 4)))
	require.NoError(t, p.Add(beat(3, contracts.Sol, 4)))

	assert.Equal(t, 3, p.Len())
	assert.Len(t, p.BeatsAt(3), 2)
	assert.Len(t, p.BeatsAt(0), 1)
	assert.Empty(t, p.BeatsAt(5))

	all := p.All()
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].Step, "beats are kept in step order")
}

func TestAddRejectsOutOfRangeStep(t *testing.T) {
	p := New(4)

	assert.ErrorIs(t, p.Add(beat(4, contracts.Do, 4)), ErrStepOutOfRange)
	assert.ErrorIs(t, p.Add(beat(-1, contracts.Do, 4)), ErrStepOutOfRange)
	assert.Equal(t, 0, p.Len())
}

func TestAddRejectsMalformedBeats(t *testing.T) {
	p := New(4)

	assert.ErrorIs(t, p.Add(beat(0, contracts.SolfegeDegree(7), 4)), ErrInvalidBeat)
	assert.ErrorIs(t, p.Add(beat(0, contracts.Do, 0)), ErrInvalidBeat)
	assert.ErrorIs(t, p.Add(contracts.Beat{Step: 0, Solfege: contracts.Do, Octave: 4, DurationSteps: 0}), ErrInvalidBeat)
}

func TestRemoveIsNoOpForMissingBeat(t *testing.T) {
	p := New(4)
	require.NoError(t, p.Add(beat(1, contracts.Re, 4)))

	require.NoError(t, p.Remove(1, contracts.Re, 4))
	assert.Equal(t, 0, p.Len())
	require.NoError(t, p.Remove(1, contracts.Re, 4))
}

func TestEditsRejectedWhileLocked(t *testing.T) {
	p := New(4)
	require.NoError(t, p.Add(beat(0, contracts.Do, 4)))

	p.Lock()
	assert.ErrorIs(t, p.Add(beat(1, contracts.Re, 4)), ErrLocked)
	assert.ErrorIs(t, p.Remove(0, contracts.Do, 4), ErrLocked)
	assert.ErrorIs(t, p.Clear(), ErrLocked)
	assert.Equal(t, 1, p.Len())

	p.Unlock()
	assert.NoError(t, p.Clear())
	assert.Equal(t, 0, p.Len())
}
