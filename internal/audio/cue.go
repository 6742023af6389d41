package audio

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/typedtext/typewriter"
)

var _ typewriter.AudioCue = (*Cue)(nil)

// Cue plays a looping keystroke sound on a Context.
type Cue struct {
	mu     sync.Mutex
	ctx    Context
	volume float64
	load   func(ref string) ([]byte, error)
	cache  map[string][]byte

	ref    string
	player Player
}

// NewCue creates a cue playing on ctx at the given volume (0.0 to 1.0).
func NewCue(ctx Context, volume float64) *Cue {
	return &Cue{
		ctx:    ctx,
		volume: volume,
		load:   LoadPCM,
		cache:  make(map[string][]byte),
	}
}

// Prepare loads ref and creates a paused player for it. Preparing the
// current sound again only rewinds it.
func (c *Cue) Prepare(ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.player != nil && c.ref == ref {
		c.player.Pause()
		return c.player.Reset()
	}

	pcm, ok := c.cache[ref]
	if !ok {
		var err error
		if pcm, err = c.load(ref); err != nil {
			return err
		}
		c.cache[ref] = pcm
	}

	p, err := c.ctx.NewPlayer(newLoopReader(pcm))
	if err != nil {
		return err
	}
	p.SetVolume(c.volume)

	c.closePlayer()
	c.player, c.ref = p, ref
	log.Debug("keystroke audio prepared", "resource", ref, "bytes", len(pcm))
	return nil
}

// Start begins or continues playback.
func (c *Cue) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil && !c.player.IsPlaying() {
		c.player.Play()
	}
}

// Pause halts playback, keeping the position.
func (c *Cue) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		c.player.Pause()
	}
}

// Stop halts playback and rewinds.
func (c *Cue) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == nil {
		return
	}
	c.player.Pause()
	if err := c.player.Reset(); err != nil {
		log.Debug("failed to rewind keystroke audio", "err", err)
	}
}

// Close releases the player. The cue can be prepared again afterwards.
func (c *Cue) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closePlayer()
}

func (c *Cue) closePlayer() error {
	if c.player == nil {
		return nil
	}
	err := c.player.Close()
	c.player, c.ref = nil, ""
	return err
}
