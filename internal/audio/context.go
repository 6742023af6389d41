package audio

import "io"

// Context creates players for raw PCM audio in the package output format.
type Context interface {
	// NewPlayer creates a player reading 16-bit little-endian PCM from r.
	NewPlayer(r io.Reader) (Player, error)

	// Close releases the context.
	Close() error

	// IsReady reports whether the context can create players.
	IsReady() bool

	SampleRate() int
	ChannelCount() int
}

// Player controls playback of one stream.
type Player interface {
	// Play starts or resumes playback.
	Play()

	// Pause halts playback, keeping the position.
	Pause()

	IsPlaying() bool

	// Reset rewinds to the beginning of the stream.
	Reset() error

	// Close releases the player.
	Close() error

	// SetVolume sets the volume from 0.0 to 1.0.
	SetVolume(volume float64)

	Volume() float64
}
