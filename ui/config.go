package ui

import (
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/typedtext/internal/progress"
	"github.com/dgnsrekt/typedtext/typewriter"
)

// Config contains TUI-specific configuration.
type Config struct {
	// Title shown in the status bar and stored with saved progress.
	Title string
	// Source is where the text came from: a path, URL or marker such as
	// "@clipboard".
	Source string
	// Path is set when the text came from a local file. It enables
	// watching.
	Path        string
	Width       uint
	EnableMouse bool
	Watch       bool
	// StartIndex restores a saved reveal position.
	StartIndex int

	// For debugging the UI
	AltScreen   bool   `env:"TYPEDTEXT_ALT_SCREEN" envDefault:"true"`
	ReportFocus bool   `env:"TYPEDTEXT_REPORT_FOCUS" envDefault:"true"`
	CursorColor string `env:"TYPEDTEXT_CURSOR_COLOR" envDefault:"#EE6FF8"`
	StatusBar   bool   `env:"TYPEDTEXT_STATUS_BAR" envDefault:"true"`
}

// Options are the collaborators the program drives.
type Options struct {
	Typing   typewriter.Config
	AudioCue typewriter.AudioCue
	// Store receives a progress snapshot on quit and on completion. Nil
	// disables saving.
	Store *progress.Store
	// Reload reads the source again when the watched file changes.
	Reload func() (string, error)
	Logger *log.Logger
}
