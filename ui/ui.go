// Package ui provides the terminal interface that types text out.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/typedtext/internal/progress"
	"github.com/dgnsrekt/typedtext/internal/watch"
	"github.com/dgnsrekt/typedtext/typewriter"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// NewProgram returns a new Tea program that types text.
func NewProgram(cfg Config, text string, opts Options) (*tea.Program, error) {
	log.Debug(
		"Starting typedtext",
		"alt_screen", cfg.AltScreen,
		"report_focus", cfg.ReportFocus,
		"watch", cfg.Watch,
	)

	m, err := newModel(cfg, text, opts)
	if err != nil {
		return nil, err
	}

	var popts []tea.ProgramOption
	if cfg.AltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		popts = append(popts, tea.WithMouseCellMotion())
	}
	if cfg.ReportFocus {
		popts = append(popts, tea.WithReportFocus())
	}
	return tea.NewProgram(m, popts...), nil
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	statusMessageTimeoutMsg struct{ id int }
	statusMsg               pagerStatusMessage
	fileChangedMsg          struct{}
	reloadedMsg             struct{ text string }
	reloadFailedMsg         struct{ err error }
)

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	width  int
	height int
}

// typing owns the engine and the state its callbacks write to. Every
// engine call happens inside Update, so the engine only ever runs on the
// Bubble Tea goroutine.
type typing struct {
	engine    *typewriter.Engine
	sched     *teaScheduler
	lifecycle *typewriter.Lifecycle
	store     *progress.Store
	reload    func() (string, error)
	watcher   *watch.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	// text as loaded, before sentence splitting
	text      string
	displayed string
	dirty     bool

	// set by the completion callback, consumed by Update
	completed bool
	// the user paused with the keyboard; focus changes leave it alone
	userPaused bool
}

func newTyping(opts Options) (*typing, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("typewriter")
	}

	t := &typing{
		sched:  newTeaScheduler(),
		store:  opts.Store,
		reload: opts.Reload,
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())

	engineOpts := []typewriter.Option{
		typewriter.WithConfig(opts.Typing),
		typewriter.WithLogger(logger),
	}
	if opts.AudioCue != nil {
		engineOpts = append(engineOpts, typewriter.WithAudioCue(opts.AudioCue))
	}
	engine, err := typewriter.New(typewriter.SinkFunc(t.setDisplayed), t.sched, engineOpts...)
	if err != nil {
		t.cancel()
		return nil, fmt.Errorf("unable to create typewriter: %w", err)
	}
	engine.OnComplete(func() { t.completed = true })

	t.engine = engine
	t.lifecycle = typewriter.NewLifecycle(engine, nil)
	return t, nil
}

func (t *typing) setDisplayed(s string) {
	t.displayed = s
	t.dirty = true
}

// start types text from index. A missing audio cue is reported but does
// not stop typing.
func (t *typing) start(text string, index int) (warning error, err error) {
	t.text = text
	t.userPaused = false
	t.completed = false

	if err := t.engine.SetTypedText(text); err != nil {
		if !errors.Is(err, typewriter.ErrResourceUnavailable) {
			return nil, err
		}
		warning = err
	}
	if index > 0 {
		if err := t.engine.RestoreProgress(index); err != nil {
			log.Warn("unable to restore progress", "index", index, "error", err)
		}
	}
	return warning, nil
}

// toggle pauses or resumes typing from the keyboard.
func (t *typing) toggle() (string, error) {
	switch t.engine.State() {
	case typewriter.StateSuspended:
		t.userPaused = false
		return "Resumed", t.engine.Resume()
	case typewriter.StateRevealing, typewriter.StateCursorBlinking:
		t.userPaused = true
		return "Paused", t.engine.Suspend()
	default:
		return "", nil
	}
}

func (t *typing) saveProgress(title, source string) {
	if t.store == nil || t.text == "" {
		return
	}
	snap, err := t.store.Save(progress.Snapshot{
		Title:  title,
		Source: source,
		Text:   t.text,
		Index:  min(t.engine.Progress(), t.engine.Len()),
	})
	if err != nil {
		log.Warn("unable to save progress", "error", err)
		return
	}
	log.Debug("progress saved", "key", snap.Key, "index", snap.Index, "length", snap.Length)
}

func (t *typing) watchFile(path string) error {
	w, err := watch.New(path)
	if err != nil {
		return err
	}
	t.watcher = w
	return nil
}

func (t *typing) waitForChange() tea.Msg {
	if err := t.watcher.Next(t.ctx); err != nil {
		log.Debug("stopped watching", "error", err)
		return nil
	}
	return fileChangedMsg{}
}

func (t *typing) reloadText() tea.Msg {
	text, err := t.reload()
	if err != nil {
		return reloadFailedMsg{err}
	}
	return reloadedMsg{text}
}

func (t *typing) shutdown() {
	t.engine.Close()
	t.sched.cancelAll()
	t.cancel()
	if t.watcher != nil {
		if err := t.watcher.Close(); err != nil {
			log.Debug("unable to close watcher", "error", err)
		}
	}
}

type model struct {
	common   *commonModel
	pager    pagerModel
	fatalErr error
}

func newModel(cfg Config, text string, opts Options) (model, error) {
	t, err := newTyping(opts)
	if err != nil {
		return model{}, err
	}
	t.text = text

	common := &commonModel{cfg: cfg}
	return model{
		common: common,
		pager:  newPagerModel(common, t),
	}, nil
}

func (m model) Init() tea.Cmd {
	t := m.pager.typing
	cfg := m.common.cfg

	warning, err := t.start(t.text, cfg.StartIndex)
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}

	cmds := []tea.Cmd{t.sched.flush()}
	if warning != nil {
		cmds = append(cmds, func() tea.Msg {
			return statusMsg{message: "Audio unavailable", isError: true}
		})
	}

	if cfg.Watch && cfg.Path != "" && t.reload != nil {
		if err := t.watchFile(cfg.Path); err != nil {
			log.Error("unable to watch file", "path", cfg.Path, "error", err)
		} else {
			cmds = append(cmds, t.waitForChange)
		}
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.pager.keys.Quit) {
			return m, m.quit()
		}

	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)

	case errMsg:
		m.fatalErr = msg.err
		log.Error("fatal error", "error", msg.err)
		m.pager.typing.shutdown()
		return m, nil
	}

	var cmd tea.Cmd
	m.pager, cmd = m.pager.update(msg)
	return m, cmd
}

func (m model) quit() tea.Cmd {
	t := m.pager.typing
	t.saveProgress(m.common.cfg.Title, m.common.cfg.Source)
	t.shutdown()
	return tea.Quit
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr)
	}
	return m.pager.View()
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
