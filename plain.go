package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/typedtext/internal/audio"
	"github.com/dgnsrekt/typedtext/internal/progress"
	"github.com/dgnsrekt/typedtext/internal/source"
	"github.com/dgnsrekt/typedtext/typewriter"
	"github.com/dgnsrekt/typedtext/typewriter/scheduler"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const cursorColor = "#EE6FF8"

// plainWriter streams published text to a terminal or pipe. The engine
// always publishes the whole text; only the part that changed is written.
// When the new text does not extend what is on screen, the trailing glyphs
// that differ are erased in place if they sit on the current line, and the
// text is written again on a fresh line otherwise.
type plainWriter struct {
	out    *termenv.Output
	tty    bool
	marker string
	shown  string
}

func newPlainWriter(w io.Writer, tty bool, marker rune) *plainWriter {
	var opts []termenv.OutputOption
	if !tty {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &plainWriter{
		out:    termenv.NewOutput(w, opts...),
		tty:    tty,
		marker: string(marker),
	}
}

// SetText implements typewriter.Sink.
func (p *plainWriter) SetText(text string) {
	if strings.HasPrefix(text, p.shown) {
		p.write(text[len(p.shown):])
		p.shown = text
		return
	}

	common := commonPrefix(p.shown, text)
	stale := p.shown[len(common):]
	if p.tty && !strings.Contains(stale, "\n") {
		p.out.CursorBack(runewidth.StringWidth(stale))
		p.out.ClearLineRight()
		p.write(text[len(common):])
	} else {
		p.write("\n" + text)
	}
	p.shown = text
}

func (p *plainWriter) write(s string) {
	if s == "" {
		return
	}
	if p.tty && strings.HasSuffix(s, p.marker) {
		_, _ = p.out.WriteString(strings.TrimSuffix(s, p.marker))
		_, _ = p.out.WriteString(p.out.String(p.marker).Foreground(p.out.Color(cursorColor)).String())
		return
	}
	_, _ = p.out.WriteString(s)
}

// finish drops a trailing cursor and ends the line.
func (p *plainWriter) finish() {
	if p.shown != "" {
		if trimmed := strings.TrimSuffix(p.shown, p.marker); trimmed != p.shown {
			p.SetText(trimmed)
		}
		_, _ = p.out.WriteString("\n")
	}
	p.shown = ""
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	// back off to a rune boundary
	for i > 0 && i < len(a) && !isRuneStart(a[i]) {
		i--
	}
	return a[:i]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

type plainOptions struct {
	source     *source.Source
	typing     typewriter.Config
	cue        *audio.Cue
	store      *progress.Store
	startIndex int
}

// runPlain types the source to stdout and returns once every character is
// shown, or on interrupt.
func runPlain(ctx context.Context, o plainOptions) error {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	cfg := o.typing
	if !tty {
		cfg.ShowCursor = false
	}

	w := newPlainWriter(os.Stdout, tty, cfg.CursorMarker)
	if tty {
		w.out.HideCursor()
		defer w.out.ShowCursor()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := scheduler.NewLoop()
	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	b := typewriter.NewBuilder(w, loop).
		TypingDelay(cfg.TypingDelay).
		RandomizeDelay(cfg.RandomizeDelay, cfg.RandomSeed).
		SplitSentences(cfg.SplitSentences).
		SentencePause(cfg.SentencePause).
		CursorBlink(cfg.CursorBlink).
		ShowCursor(cfg.ShowCursor).
		CursorMarker(cfg.CursorMarker).
		Logger(log.Default().WithPrefix("typewriter")).
		TextResolver(source.NewLoader())
	if cfg.PlayAudioCue && o.cue != nil {
		b = b.AudioCue(o.cue, cfg.AudioResource)
	}
	engine, err := b.Build()
	if err != nil {
		return fmt.Errorf("unable to create typewriter: %w", err)
	}

	save := func() {
		if o.store == nil {
			return
		}
		_, err := o.store.Save(progress.Snapshot{
			Title:  sourceTitle(o.source),
			Source: sourceRef(o.source),
			Text:   o.source.Text,
			Index:  min(engine.Progress(), engine.Len()),
		})
		if err != nil {
			log.Warn("unable to save progress", "error", err)
		}
	}

	done := make(chan struct{})
	var startErr error
	if err := loop.Do(ctx, func() {
		engine.OnComplete(func() {
			save()
			engine.Close()
			close(done)
		})
		if err := engine.SetTypedText(o.source.Text); err != nil {
			if !errors.Is(err, typewriter.ErrResourceUnavailable) {
				startErr = err
				return
			}
			log.Warn("typing without sound", "error", err)
		}
		if o.startIndex > 0 {
			if err := engine.RestoreProgress(o.startIndex); err != nil {
				log.Warn("unable to restore progress", "index", o.startIndex, "error", err)
			}
		}
	}); err != nil {
		return fmt.Errorf("unable to start typing: %w", err)
	}
	if startErr != nil {
		return startErr
	}

	lifecycle := typewriter.NewLifecycle(engine, nil)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, append([]os.Signal{os.Interrupt, syscall.SIGTERM}, jobControlSignals...)...)
	defer signal.Stop(sigs)

	for {
		select {
		case <-done:
			w.finish()
			return nil

		case sig := <-sigs:
			switch {
			case isSuspendSignal(sig):
				_ = loop.Do(ctx, func() { _ = lifecycle.Hidden() })
				if tty {
					w.out.ShowCursor()
				}
				if err := stopSelf(); err != nil {
					log.Warn("unable to stop", "error", err)
				}
			case isContinueSignal(sig):
				if tty {
					w.out.HideCursor()
				}
				_ = loop.Do(ctx, func() { _ = lifecycle.Visible() })
			default:
				log.Debug("interrupted", "signal", sig)
				_ = loop.Do(ctx, func() {
					save()
					engine.Close()
				})
				w.finish()
				return nil
			}

		case err := <-loopErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("typing stopped: %w", err)
			}
			return nil
		}
	}
}
