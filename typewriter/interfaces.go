package typewriter

// Sink presents the text revealed so far. The engine calls SetText with the
// complete string to show, never a delta.
type Sink interface {
	SetText(text string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(text string)

// SetText calls f(text).
func (f SinkFunc) SetText(text string) { f(text) }

// AudioCue plays the keystroke sound. The engine decides when; the cue only
// plays.
type AudioCue interface {
	// Prepare loads the sound named by ref. It is called once per session.
	Prepare(ref string) error

	// Start begins or continues playback.
	Start()

	// Pause halts playback, keeping the position.
	Pause()

	// Stop halts playback and rewinds.
	Stop()
}

// TextResolver turns a text resource reference into text.
type TextResolver interface {
	ResolveText(ref string) (string, error)
}

// Suspender is what a Lifecycle drives.
type Suspender interface {
	Suspend() error
	Resume() error
}
