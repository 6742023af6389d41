package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/dgnsrekt/typedtext/typewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type configEntry struct {
	key     string
	comment string
	value   any
}

func defaultConfigEntries() []configEntry {
	d := typewriter.DefaultConfig()
	return []configEntry{
		{"typing_delay", "delay between characters", d.TypingDelay.String()},
		{"randomize_delay", "randomize the delay between characters", d.RandomizeDelay},
		{"random_seed", "minimum delay when randomizing", d.RandomSeed.String()},
		{"split_sentences", "put every sentence on its own line", d.SplitSentences},
		{"sentence_pause", "pause after a period or comma", d.SentencePause.String()},
		{"show_cursor", "show a cursor while typing", d.ShowCursor},
		{"cursor_blink", "cursor blink interval once typing is done", d.CursorBlink.String()},
		{"cursor_marker", "cursor glyph", string(d.CursorMarker)},
		{"play_audio_cue", "play a keystroke sound while typing", true},
		{"audio_resource", "keystroke sound: builtin:keystrokes, builtin:click or a .wav/.mp3 path", d.AudioResource},
		{"volume", "keystroke volume (0.0 to 2.0)", 1.0},
		{"width", "word-wrap at width (0 uses the terminal width)", 0},
		{"mouse", "mouse support (TUI-mode only)", false},
		{"plain", "write to stdout instead of running the TUI", false},
		{"progress_dir", "where typing progress is saved (empty uses the user data directory)", ""},
	}
}

// defaultConfig renders the commented default configuration file.
func defaultConfig() (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range defaultConfigEntries() {
		var v yaml.Node
		if err := v.Encode(e.value); err != nil {
			return "", fmt.Errorf("unable to encode %s: %w", e.key, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.key, HeadComment: e.comment},
			&v,
		)
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("unable to render config: %w", err)
	}
	return string(b), nil
}

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the typedtext config file",
	Long:    paragraph(fmt.Sprintf("\n%s the typedtext config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("typedtext config\ntypedtext config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("typedtext", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		content, err := defaultConfig()
		if err != nil {
			return err
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
