package contracts

import "time"

// Tempo bounds enforced by the transport, in beats per minute.
const (
	MinTempo = 60
	MaxTempo = 180
)

// TransportState is a snapshot of the transport. CurrentStep only advances
// while Playing; stopping resets it to 0.
type TransportState struct {
	Playing     bool
	Tempo       float64
	CurrentStep int
}

// StepFunc is invoked once per tick with the step index and the precomputed
// scheduled trigger time of the tick (not "now"), so downstream scheduling
// does not inherit event-loop jitter.
type StepFunc func(step int, scheduledAt time.Time)

// BeatFunc is invoked for every beat whose step matches the current tick.
type BeatFunc func(beat Beat, scheduledAt time.Time)
