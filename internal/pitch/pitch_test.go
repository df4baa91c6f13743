package pitch

import (
	"testing"

	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/stretchr/testify/assert"
)

func TestResolveMajorScaleInC(t *testing.T) {
	assert := assert.New(t)

	wantNames := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4"}
	wantKeys := []uint8{60, 62, 64, 65, 67, 69, 71}

	for d := contracts.Do; d <= contracts.Ti; d++ {
		r, err := Resolve(contracts.KeyC, contracts.MajorMode, d, 4)
		assert.NoError(err)
		assert.Equal(wantNames[d], r.Name)
		assert.Equal(wantKeys[d], r.MIDIKey)
	}
}

func TestResolveMinorModeFlattensMiLaTi(t *testing.T) {
	assert := assert.New(t)

	r, err := Resolve(contracts.KeyC, contracts.MinorMode, contracts.Mi, 4)
	assert.NoError(err)
	assert.Equal("Eb4", r.Name)
	assert.Equal(uint8(63), r.MIDIKey)

	r, err = Resolve(contracts.KeyC, contracts.MinorMode, contracts.Ti, 4)
	assert.NoError(err)
	assert.Equal("Bb4", r.Name)
}

func TestResolveCrossesOctaveBoundary(t *testing.T) {
	assert := assert.New(t)

	// Ti in B major is A#/Bb of the next octave relative to the tonic's C-based octave.
	r, err := Resolve(contracts.KeyB, contracts.MajorMode, contracts.Ti, 4)
	assert.NoError(err)
	assert.Equal("Bb5", r.Name)
	assert.Equal(uint8(82), r.MIDIKey)
}

func TestResolveRejectsBadInput(t *testing.T) {
	assert := assert.New(t)

	_, err := Resolve(contracts.KeyC, contracts.MajorMode, contracts.SolfegeDegree(7), 4)
	assert.ErrorIs(err, ErrInvalidDegree)

	_, err = Resolve(contracts.KeyC, contracts.MajorMode, contracts.Do, 0)
	assert.ErrorIs(err, ErrInvalidOctave)

	_, err = Resolve(contracts.KeyC, contracts.MajorMode, contracts.Do, 9)
	assert.ErrorIs(err, ErrInvalidOctave)
}

func TestResolveNeverExceedsMIDIKeyRange(t *testing.T) {
	assert := assert.New(t)

	// High tonics at the top octave overflow 7 bits; those combinations must
	// error instead of emitting an invalid data byte (e.g. B major Ti at
	// octave 8 would be key 130).
	for key := contracts.KeyC; key <= contracts.KeyB; key++ {
		for d := contracts.Do; d <= contracts.Ti; d++ {
			r, err := Resolve(key, contracts.MajorMode, d, contracts.MaxOctave)
			if err != nil {
				assert.ErrorIs(err, ErrPitchOutOfRange)
				continue
			}
			assert.LessOrEqual(r.MIDIKey, uint8(127))
		}
	}

	_, err := Resolve(contracts.KeyB, contracts.MajorMode, contracts.Ti, contracts.MaxOctave)
	assert.ErrorIs(err, ErrPitchOutOfRange)
}
