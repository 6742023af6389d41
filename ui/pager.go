package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/typedtext/typewriter"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/muesli/termenv"
)

const (
	statusBarHeight = 1
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#B6FFE4")).
					Background(green).
					Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerStatusMessage struct {
	message string
	isError bool
}

type pagerModel struct {
	common   *commonModel
	typing   *typing
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	state    pagerState
	showHelp bool

	// keep the newest line in view while typing
	follow bool

	statusMessage   pagerStatusMessage
	statusMessageID int

	cursorStyle lipgloss.Style
}

func newPagerModel(common *commonModel, t *typing) pagerModel {
	// Init viewport
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	vp.MouseWheelEnabled = common.cfg.EnableMouse

	h := help.New()
	h.ShowAll = true

	return pagerModel{
		common:      common,
		typing:      t,
		viewport:    vp,
		help:        h,
		keys:        newKeyMap(),
		state:       pagerStateBrowse,
		follow:      true,
		cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(common.cfg.CursorColor)).Bold(true),
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h
	if m.common.cfg.StatusBar {
		m.viewport.Height -= statusBarHeight
	}
	if m.showHelp {
		m.viewport.Height -= lipgloss.Height(m.helpView())
	}
	m.viewport.Height = max(m.viewport.Height, 0)
	m.typing.dirty = true
	m.syncContent()
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// showStatusMessage shows msg in the status bar until the timeout fires.
func (m *pagerModel) showStatusMessage(msg pagerStatusMessage) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg
	m.statusMessageID++
	id := m.statusMessageID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{id: id}
	})
}

// syncContent re-renders the viewport if the engine published new text.
func (m *pagerModel) syncContent() {
	t := m.typing
	if !t.dirty {
		return
	}
	t.dirty = false
	m.viewport.SetContent(m.render(t.displayed))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// render wraps the displayed text to the view and colors the trailing
// cursor.
func (m pagerModel) render(text string) string {
	width := m.viewport.Width
	if w := int(m.common.cfg.Width); w > 0 && (width == 0 || w < width) { //nolint:gosec
		width = w
	}
	if width > 0 {
		text = wrap.String(wordwrap.String(text, width), width)
	}

	cfg := m.typing.engine.Config()
	if !cfg.ShowCursor || !m.cursorActive() {
		return text
	}
	marker := string(cfg.CursorMarker)
	if !strings.HasSuffix(text, marker) {
		return text
	}
	return strings.TrimSuffix(text, marker) + m.cursorStyle.Render(marker)
}

func (m pagerModel) cursorActive() bool {
	switch m.typing.engine.State() {
	case typewriter.StateRevealing, typewriter.StateSuspended, typewriter.StateCursorBlinking:
		return true
	default:
		return false
	}
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)
	t := m.typing

	switch msg := msg.(type) {
	case tickMsg:
		if t.sched.fire(msg) {
			m.syncContent()
		}
		if t.completed {
			t.completed = false
			t.saveProgress(m.common.cfg.Title, m.common.cfg.Source)
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Done!", false}))
		}
		cmds = append(cmds, t.sched.flush())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			note, err := t.toggle()
			if err != nil {
				log.Debug("toggle failed", "error", err)
			} else if note != "" {
				cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{note, false}))
			}
			m.syncContent()
			cmds = append(cmds, t.sched.flush())
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keys.Restart):
			m.follow = true
			warning, err := t.start(t.text, 0)
			if err != nil {
				cmds = append(cmds, func() tea.Msg { return errMsg{err} })
			} else if warning != nil {
				cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Audio unavailable", true}))
			}
			m.syncContent()
			cmds = append(cmds, t.sched.flush())
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keys.Copy):
			// Copy using OSC 52
			termenv.Copy(t.text)
			// Copy using native system clipboard
			_ = clipboard.WriteAll(t.text)
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Copied text!", false}))
			return m, tea.Batch(cmds...)

		case key.Matches(msg, m.keys.Help):
			m.toggleHelp()
			return m, nil

		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			m.follow = false
			return m, nil

		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			m.follow = true
			return m, nil
		}

	case tea.FocusMsg:
		if !t.userPaused {
			_ = t.lifecycle.Visible()
			m.syncContent()
			return m, t.sched.flush()
		}
		return m, nil

	case tea.BlurMsg:
		_ = t.lifecycle.Hidden()
		return m, nil

	case statusMsg:
		return m, m.showStatusMessage(pagerStatusMessage(msg))

	case statusMessageTimeoutMsg:
		if msg.id == m.statusMessageID {
			m.state = pagerStateBrowse
		}
		return m, nil

	case fileChangedMsg:
		return m, tea.Batch(t.reloadText, t.waitForChange)

	case reloadedMsg:
		if msg.text == t.text {
			return m, nil
		}
		m.follow = true
		warning, err := t.start(msg.text, 0)
		switch {
		case err != nil:
			log.Error("unable to restart typing", "error", err)
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Reload failed", true}))
		case warning != nil:
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Reloaded, audio unavailable", true}))
		default:
			cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Reloaded", false}))
		}
		m.syncContent()
		cmds = append(cmds, t.sched.flush())
		return m, tea.Batch(cmds...)

	case reloadFailedMsg:
		log.Warn("unable to reload", "error", msg.err)
		return m, m.showStatusMessage(pagerStatusMessage{"Reload failed", true})
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.follow = m.viewport.AtBottom()
	}

	return m, tea.Batch(cmds...)
}

func (m pagerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View())

	// Footer
	if m.common.cfg.StatusBar {
		fmt.Fprint(&b, "\n")
		m.statusBarView(&b)
	}

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == pagerStateStatusMessage
	messageStyle := statusBarMessageStyle
	if m.statusMessage.isError {
		messageStyle = statusBarErrorStyle
	}

	// Logo
	logo := logoView()

	// Typed so far
	typed := " " + m.progressNote() + " "
	if showStatusMessage {
		typed = messageStyle(typed)
	} else {
		typed = statusBarScrollPosStyle(typed)
	}

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude)
	if showStatusMessage {
		scrollPercent = messageStyle(scrollPercent)
	} else {
		scrollPercent = statusBarScrollPosStyle(scrollPercent)
	}

	// "Help" note
	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageHelpStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	// Note
	var note string
	if showStatusMessage {
		note = m.statusMessage.message
	} else {
		note = m.common.cfg.Title
		if s := m.stateNote(); s != "" {
			note += " · " + s
		}
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(typed)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = messageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(typed)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = messageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		typed,
		scrollPercent,
		helpNote,
	)
}

// progressNote reads like "1,024/4,096".
func (m pagerModel) progressNote() string {
	e := m.typing.engine
	total := e.Len()
	shown := min(e.Progress(), total)
	if e.State() == typewriter.StateCompleted || e.State() == typewriter.StateCursorBlinking {
		shown = total
	}
	return humanize.Comma(int64(shown)) + "/" + humanize.Comma(int64(total))
}

func (m pagerModel) stateNote() string {
	switch m.typing.engine.State() {
	case typewriter.StateSuspended:
		return "paused"
	case typewriter.StateCompleted, typewriter.StateCursorBlinking:
		return "done"
	default:
		return ""
	}
}

func (m pagerModel) helpView() (s string) {
	s = "\n" + m.help.FullHelpView(m.keys.FullHelp())
	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := ansi.PrintableRuneWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}
