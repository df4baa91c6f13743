package contracts

import "context"

// DeviceInfo contains information about an output device a synthesizer
// backend can address.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// ToneHandle identifies a sounding tone inside a synthesizer backend. Handles
// are opaque to callers and only valid between AttackTone and ReleaseTone.
type ToneHandle int64

// Synthesizer is the audio collaborator boundary. The engine never assumes the
// backend is ready: EnsureReady gates every attack, because real backends may
// require a user gesture or device handshake before they can sound.
type Synthesizer interface {
	// EnsureReady reports whether the backend can sound tones right now.
	// A false result is not an error; the caller simply skips the attack.
	EnsureReady(ctx context.Context) (bool, error)
	// AttackTone starts a tone for the given MIDI key and velocity.
	AttackTone(key uint8, velocity uint8) (ToneHandle, error)
	// ReleaseTone stops the tone identified by handle. Unknown handles are a no-op.
	ReleaseTone(handle ToneHandle) error
	// Devices lists the output devices available to the backend.
	Devices() ([]DeviceInfo, error)
	// Close releases backend resources. The synthesizer is unusable afterwards.
	Close() error
}
