//go:build !nocgo

package audio

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// ProductionContext plays audio on the system device through oto.
type ProductionContext struct {
	mu      sync.Mutex
	context *oto.Context
	ready   bool
}

// NewProductionContext opens the audio device.
func NewProductionContext() (*ProductionContext, error) {
	options := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	// Short clicks want small buffers; macOS and Windows need a little more.
	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = 60 * time.Millisecond
	case "windows":
		options.BufferSize = 50 * time.Millisecond
	default:
		options.BufferSize = 30 * time.Millisecond
	}

	log.Debug("initializing audio context",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	context, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		// oto v3 contexts cannot be closed; it will be garbage collected.
		return nil, fmt.Errorf("audio context initialization timeout")
	}

	return &ProductionContext{context: context, ready: true}, nil
}

// NewPlayer creates a player reading from r.
func (pc *ProductionContext) NewPlayer(r io.Reader) (Player, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if !pc.ready || pc.context == nil {
		return nil, fmt.Errorf("audio context not ready")
	}
	return &productionPlayer{player: pc.context.NewPlayer(r), volume: 1}, nil
}

// Close marks the context unusable. oto v3 has no way to close a context.
func (pc *ProductionContext) Close() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.ready = false
	pc.context = nil
	return nil
}

func (pc *ProductionContext) IsReady() bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.ready
}

func (pc *ProductionContext) SampleRate() int   { return SampleRate }
func (pc *ProductionContext) ChannelCount() int { return Channels }

type productionPlayer struct {
	mu     sync.Mutex
	player *oto.Player
	volume float64
}

func (pp *productionPlayer) Play()           { pp.player.Play() }
func (pp *productionPlayer) Pause()          { pp.player.Pause() }
func (pp *productionPlayer) IsPlaying() bool { return pp.player.IsPlaying() }
func (pp *productionPlayer) Close() error    { return pp.player.Close() }

// Reset seeks the player, which also drops audio oto has buffered.
func (pp *productionPlayer) Reset() error {
	_, err := pp.player.Seek(0, io.SeekStart)
	return err
}

func (pp *productionPlayer) SetVolume(volume float64) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.volume = volume
	pp.player.SetVolume(volume)
}

func (pp *productionPlayer) Volume() float64 {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return pp.volume
}
