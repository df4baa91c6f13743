package solfa

import (
	"github.com/leandrodaf/solfa/internal/display"
	"github.com/leandrodaf/solfa/internal/logger"
	"github.com/leandrodaf/solfa/internal/synth"
	"github.com/leandrodaf/solfa/sdk/contracts"
)

const (
	defaultSteps       = 16
	defaultSubdivision = 4
	defaultVelocity    = 96
)

// applyDefaultOptions sets default values for EngineOptions if not explicitly provided.
func applyDefaultOptions(opts ...contracts.Option) (contracts.EngineOptions, error) {
	options := &contracts.EngineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.Steps <= 0 {
		options.Steps = defaultSteps
	}
	if options.Subdivision <= 0 {
		options.Subdivision = defaultSubdivision
	}
	if options.Velocity == 0 {
		options.Velocity = defaultVelocity
	}
	if options.MaxDisplayNotes <= 0 {
		options.MaxDisplayNotes = display.DefaultMaxNotes
	}
	if options.Display.ExtendWindow <= 0 {
		options.Display.ExtendWindow = display.DefaultExtendWindow
	}
	if options.Display.HideDelay <= 0 {
		options.Display.HideDelay = display.DefaultHideDelay
	}
	if options.Synth == nil {
		options.Synth = synth.NewSilent()
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
