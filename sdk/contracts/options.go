package contracts

import "time"

// DisplayTiming configures the transient note display session timers.
type DisplayTiming struct {
	// ExtendWindow is how long an arrival defers the decision to start hiding.
	// Every new note restarts it.
	ExtendWindow time.Duration
	// HideDelay is how long the display lingers after the extension window
	// closes without further arrivals.
	HideDelay time.Duration
}

// EngineOptions defines the configuration options for the note engine.
type EngineOptions struct {
	Logger          Logger        // Logger for engine events and errors.
	LogLevel        LogLevel      // Level of logging to use.
	Key             Key           // Tonic the solfège degrees resolve against.
	Mode            Mode          // Major or minor scale mapping.
	Steps           int           // Number of steps in the sequencer loop.
	Subdivision     int           // Ticks per beat; 4 means sixteenth-note steps.
	Velocity        uint8         // Attack velocity handed to the synthesizer.
	MaxDisplayNotes int           // Display session capacity; oldest evicted first.
	Display         DisplayTiming // Transient display timer configuration.
	Synth           Synthesizer   // Audio collaborator; defaults to the silent backend.
	StepListener    StepFunc      // Optional observer of transport step ticks.
}

// Option is a function that modifies EngineOptions.
type Option func(*EngineOptions)

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(opts *EngineOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the engine.
func WithLogLevel(level LogLevel) Option {
	return func(opts *EngineOptions) {
		opts.LogLevel = level
	}
}

// WithKey sets the tonic key notes are resolved against.
func WithKey(k Key) Option {
	return func(opts *EngineOptions) {
		opts.Key = k
	}
}

// WithMode sets the scale mode notes are resolved against.
func WithMode(m Mode) Option {
	return func(opts *EngineOptions) {
		opts.Mode = m
	}
}

// WithSteps sets the number of steps in the sequencer loop.
func WithSteps(steps int) Option {
	return func(opts *EngineOptions) {
		opts.Steps = steps
	}
}

// WithSubdivision sets how many transport ticks make up one beat.
func WithSubdivision(ticksPerBeat int) Option {
	return func(opts *EngineOptions) {
		opts.Subdivision = ticksPerBeat
	}
}

// WithVelocity sets the attack velocity handed to the synthesizer.
func WithVelocity(v uint8) Option {
	return func(opts *EngineOptions) {
		opts.Velocity = v
	}
}

// WithMaxDisplayNotes sets the transient display session capacity.
func WithMaxDisplayNotes(n int) Option {
	return func(opts *EngineOptions) {
		opts.MaxDisplayNotes = n
	}
}

// WithDisplayTiming sets the extend/hide timers of the transient display.
func WithDisplayTiming(t DisplayTiming) Option {
	return func(opts *EngineOptions) {
		opts.Display = t
	}
}

// WithSynthesizer sets the audio collaborator used to sound notes.
func WithSynthesizer(s Synthesizer) Option {
	return func(opts *EngineOptions) {
		opts.Synth = s
	}
}

// WithStepListener registers an observer invoked on every transport tick.
func WithStepListener(fn StepFunc) Option {
	return func(opts *EngineOptions) {
		opts.StepListener = fn
	}
}
