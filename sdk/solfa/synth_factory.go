package solfa

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/solfa/internal/synth/synthdarwin"
	"github.com/leandrodaf/solfa/internal/synth/synthrtmidi"
	"github.com/leandrodaf/solfa/internal/synth/synthwinmm"
	"github.com/leandrodaf/solfa/sdk/contracts"
)

// ErrUnsupportedOS is returned when no synthesizer backend exists for the
// current operating system.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// synthInitializers maps OS names to corresponding synthesizer initializers.
var synthInitializers = map[string]func(contracts.Logger) (contracts.Synthesizer, error){
	"darwin":  synthdarwin.NewSynthesizer,
	"windows": synthwinmm.NewSynthesizer,
	"linux":   synthrtmidi.NewSynthesizer,
}

// NewSynthesizer initializes the synthesizer backend for the current
// operating system, returning ErrUnsupportedOS if none exists.
func NewSynthesizer(logger contracts.Logger) (contracts.Synthesizer, error) {
	if initializer, exists := synthInitializers[runtime.GOOS]; exists {
		return initializer(logger)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
