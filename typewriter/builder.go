package typewriter

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/typedtext/typewriter/scheduler"
)

// Builder assembles an Engine step by step.
//
//	e, err := typewriter.NewBuilder(sink, sched).
//		TypingDelay(80 * time.Millisecond).
//		SentencePause(time.Second).
//		Build()
type Builder struct {
	sink  Sink
	sched scheduler.Scheduler
	cfg   Config
	opts  []Option
}

// NewBuilder starts a builder with the default configuration.
func NewBuilder(sink Sink, sched scheduler.Scheduler) *Builder {
	return &Builder{sink: sink, sched: sched, cfg: DefaultConfig()}
}

func (b *Builder) TypingDelay(d time.Duration) *Builder {
	b.cfg.TypingDelay = d
	return b
}

func (b *Builder) RandomizeDelay(enabled bool, seed time.Duration) *Builder {
	b.cfg.RandomizeDelay = enabled
	b.cfg.RandomSeed = seed
	return b
}

func (b *Builder) SplitSentences(enabled bool) *Builder {
	b.cfg.SplitSentences = enabled
	return b
}

func (b *Builder) SentencePause(d time.Duration) *Builder {
	b.cfg.SentencePause = d
	return b
}

func (b *Builder) ShowCursor(enabled bool) *Builder {
	b.cfg.ShowCursor = enabled
	return b
}

// CursorBlink sets the blink cadence and turns the cursor on.
func (b *Builder) CursorBlink(d time.Duration) *Builder {
	b.cfg.ShowCursor = true
	b.cfg.CursorBlink = d
	return b
}

func (b *Builder) CursorMarker(r rune) *Builder {
	b.cfg.CursorMarker = r
	return b
}

// AudioCue turns keystroke audio on, playing ref through cue.
func (b *Builder) AudioCue(cue AudioCue, ref string) *Builder {
	b.cfg.PlayAudioCue = true
	b.cfg.AudioResource = ref
	b.opts = append(b.opts, WithAudioCue(cue))
	return b
}

func (b *Builder) Rand(r *rand.Rand) *Builder {
	b.opts = append(b.opts, WithRand(r))
	return b
}

func (b *Builder) Logger(l *log.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(l))
	return b
}

func (b *Builder) TextResolver(r TextResolver) *Builder {
	b.opts = append(b.opts, WithTextResolver(r))
	return b
}

// Build validates the configuration and creates the engine.
func (b *Builder) Build() (*Engine, error) {
	opts := append([]Option{WithConfig(b.cfg)}, b.opts...)
	return New(b.sink, b.sched, opts...)
}
