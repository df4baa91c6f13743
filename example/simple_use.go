package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/solfa/internal/logger"
	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/leandrodaf/solfa/sdk/solfa"
)

func main() {
	log := logger.NewZapLogger()

	synth, err := solfa.NewSynthesizer(log)
	if err != nil {
		log.Error("Failed to initialize synthesizer", log.Field().Error("error", err))
		return
	}

	engine, err := solfa.New(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSynthesizer(synth),
		contracts.WithKey(contracts.KeyC),
		contracts.WithSteps(16),
	)
	if err != nil {
		log.Error("Failed to initialize engine", log.Field().Error("error", err))
		return
	}
	defer engine.Close()

	// Log every note lifecycle event the engine publishes.
	err = engine.Subscribe("console", 0, func(ev contracts.NoteEvent) {
		log.Info("Note event",
			log.Field().Int("Kind", int(ev.Kind)),
			log.Field().String("Note", ev.Record.NoteName),
			log.Field().String("ID", ev.NoteID),
		)
	})
	if err != nil {
		log.Error("Failed to subscribe", log.Field().Error("error", err))
		return
	}

	// A live gesture: attack Do in octave 4, hold it briefly, release it.
	rec, ok := engine.Attack(context.Background(), contracts.Do, 4)
	if ok {
		time.Sleep(500 * time.Millisecond)
		engine.Release(rec.NoteID)
	}

	// Program a C major arpeggio and loop it for a few seconds.
	prog := engine.Program()
	prog.Add(contracts.Beat{Step: 0, Solfege: contracts.Do, Octave: 4, DurationSteps: 2})
	prog.Add(contracts.Beat{Step: 4, Solfege: contracts.Mi, Octave: 4, DurationSteps: 2})
	prog.Add(contracts.Beat{Step: 8, Solfege: contracts.Sol, Octave: 4, DurationSteps: 2})
	prog.Add(contracts.Beat{Step: 12, Solfege: contracts.Do, Octave: 5, DurationSteps: 2})

	if err = engine.Play(120); err != nil {
		log.Error("Failed to start playback", log.Field().Error("error", err))
		return
	}

	fmt.Println("Playing... stopping in 8 seconds.")
	time.Sleep(8 * time.Second)
	engine.StopPlayback()
}
