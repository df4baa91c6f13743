package main

import (
	"fmt"

	"github.com/leandrodaf/solfa/internal/logger"
	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/leandrodaf/solfa/sdk/solfa"
)

// newEngine builds an engine from the persistent flags, backed by the
// synthesizer of the current operating system.
func newEngine(extra ...contracts.Option) (*solfa.Engine, error) {
	key, ok := contracts.ParseKey(flagKey)
	if !ok {
		return nil, fmt.Errorf("unknown key %q", flagKey)
	}
	mode := contracts.MajorMode
	if flagMinor {
		mode = contracts.MinorMode
	}

	log := logger.NewZapLogger()
	synth, err := solfa.NewSynthesizer(log)
	if err != nil {
		return nil, err
	}

	opts := append([]contracts.Option{
		contracts.WithLogger(log),
		contracts.WithKey(key),
		contracts.WithMode(mode),
		contracts.WithSteps(flagSteps),
		contracts.WithVelocity(flagVelocity),
		contracts.WithSynthesizer(synth),
	}, extra...)
	return solfa.New(opts...)
}
