package audio

import "github.com/gopxl/beep"

// Output format shared by every context and resource.
const (
	// SampleRate is the output sample rate in Hz.
	SampleRate = 44100
	// Channels is the number of output channels (1 = mono).
	Channels = 1
	// BitDepth is the bit depth per sample.
	BitDepth = 16
	// BytesPerSample is the number of bytes per sample.
	BytesPerSample = BitDepth / 8
)

// sampleRate is SampleRate for beep streamers.
const sampleRate = beep.SampleRate(SampleRate)

// ContextType selects the kind of audio context to create.
type ContextType int

const (
	// ContextProduction uses real audio hardware via oto.
	ContextProduction ContextType = iota
	// ContextMock records calls without producing sound.
	ContextMock
	// ContextAuto picks production unless running in CI, falling back to
	// mock when the device cannot be opened.
	ContextAuto
)

func (t ContextType) String() string {
	switch t {
	case ContextProduction:
		return "production"
	case ContextMock:
		return "mock"
	case ContextAuto:
		return "auto"
	default:
		return "unknown"
	}
}
