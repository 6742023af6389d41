// Package main provides the entry point for the typedtext CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/typedtext/internal/audio"
	"github.com/dgnsrekt/typedtext/internal/progress"
	"github.com/dgnsrekt/typedtext/internal/source"
	"github.com/dgnsrekt/typedtext/typewriter"
	"github.com/dgnsrekt/typedtext/ui"
	"github.com/dgnsrekt/typedtext/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	literalText string
	plain       bool
	width       uint
	mouse       bool
	watchSource bool
	resume      bool

	// closes the debug log, if one was opened
	logCloser = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:   "typedtext [SOURCE|DIR]",
		Short: "Type text out on the CLI, one character at a time",
		Long: paragraph(
			fmt.Sprintf("\nType text out on the CLI, %s.", keyword("one character at a time")),
		),
		Example: paragraph("typedtext README.md\ncat notes.txt | typedtext --plain\ntypedtext @clipboard --delay 50ms"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if viper.GetBool("debug") {
				closer, err := setupLog()
				if err != nil {
					return err
				}
				logCloser = closer
			}
			switch cmd.Name() {
			case "config", "man":
				return nil
			}
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// typingKeys are the configuration keys that make up a typewriter.Config.
var typingKeys = []string{
	"typing_delay",
	"randomize_delay",
	"random_seed",
	"split_sentences",
	"sentence_pause",
	"show_cursor",
	"cursor_blink",
	"cursor_marker",
	"play_audio_cue",
	"audio_resource",
}

// typingConfig reads the typewriter configuration from flags, environment
// and config file.
func typingConfig() (typewriter.Config, error) {
	opts := make(map[string]any, len(typingKeys))
	for _, k := range typingKeys {
		if v := viper.Get(k); v != nil {
			opts[k] = v
		}
	}
	cfg, err := typewriter.DefaultConfig().ApplyOptions(opts)
	if err != nil {
		return cfg, fmt.Errorf("invalid typing configuration: %w", err)
	}
	if cfg.PlayAudioCue && !isBuiltin(cfg.AudioResource) {
		cfg.AudioResource = utils.ExpandPath(cfg.AudioResource)
	}
	return cfg, nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	plain = viper.GetBool("plain")
	watchSource = viper.GetBool("watch")

	if _, err := typingConfig(); err != nil {
		return err
	}
	if v := viper.GetFloat64("volume"); v < 0 || v > 2 {
		return fmt.Errorf("volume must be between 0 and 2, got %.2f", v)
	}
	if resume && cmd.Flags().Changed("text") {
		return errors.New("cannot use --resume with --text")
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if !isTerminal {
		plain = true
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	loader := source.NewLoader()

	var (
		src *source.Source
		err error
	)
	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}

	switch {
	case cmd.Flags().Changed("text"):
		src = &source.Source{Text: source.Normalize(literalText), Title: "text"}
		if src.Text == "" {
			return source.ErrEmpty
		}
	default:
		// if stdin is a pipe then use stdin for input. note that you can
		// also explicitly use a - to read from stdin.
		if arg == "" {
			if yes, err := stdinIsPipe(); err != nil {
				return err
			} else if yes {
				arg = "-"
			} else {
				arg = "."
			}
		}
		src, err = loader.Load(ctx, arg)
		if err != nil {
			return err
		}
	}

	reload := func() (string, error) {
		s, err := loader.Load(context.Background(), src.Path)
		if err != nil {
			return "", err
		}
		return s.Text, nil
	}
	return typeSource(ctx, src, reload, 0)
}

// typeSource types src in the TUI or the plain writer. A startIndex of zero
// consults the saved progress when --resume is set.
func typeSource(ctx context.Context, src *source.Source, reload func() (string, error), startIndex int) error {
	cfg, err := typingConfig()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		log.Warn("progress will not be saved", "error", err)
	} else {
		defer store.Close() //nolint:errcheck
	}

	if resume && startIndex == 0 && store != nil {
		if snap, err := store.LoadText(src.Text); err == nil && !snap.Done() {
			startIndex = snap.Index
			log.Debug("resuming", "key", snap.Key, "index", snap.Index)
		}
	}

	var cue *audio.Cue
	if cfg.PlayAudioCue {
		actx, err := audio.NewContext(audio.ContextAuto)
		if err != nil {
			log.Warn("audio unavailable", "error", err)
			cfg.PlayAudioCue = false
		} else {
			defer actx.Close() //nolint:errcheck
			cue = audio.NewCue(actx, viper.GetFloat64("volume"))
			defer cue.Close() //nolint:errcheck
		}
	}

	if plain {
		return runPlain(ctx, plainOptions{
			source:     src,
			typing:     cfg,
			cue:        cue,
			store:      store,
			startIndex: startIndex,
		})
	}
	return runTUI(src, cfg, cue, store, reload, startIndex)
}

func runTUI(src *source.Source, typing typewriter.Config, cue *audio.Cue, store *progress.Store, reload func() (string, error), startIndex int) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Title = sourceTitle(src)
	cfg.Source = sourceRef(src)
	cfg.Path = src.Path
	cfg.Width = width
	cfg.EnableMouse = mouse
	cfg.Watch = watchSource
	cfg.StartIndex = startIndex

	opts := ui.Options{
		Typing: typing,
		Store:  store,
		Logger: log.Default().WithPrefix("typewriter"),
	}
	if cue != nil {
		opts.AudioCue = cue
	}
	if src.Path != "" {
		opts.Reload = reload
	}

	p, err := ui.NewProgram(cfg, src.Text, opts)
	if err != nil {
		return err
	}

	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func sourceTitle(src *source.Source) string {
	if src.Title != "" {
		return src.Title
	}
	return "typedtext"
}

func sourceRef(src *source.Source) string {
	switch {
	case src.Path != "":
		return src.Path
	case src.URL != "":
		return src.URL
	default:
		return src.Title
	}
}

func isBuiltin(ref string) bool {
	return strings.HasPrefix(ref, audio.BuiltinPrefix)
}

// openStore opens the progress store in the user data directory, or the
// directory named by progress_dir.
func openStore() (*progress.Store, error) {
	dir := viper.GetString("progress_dir")
	if dir == "" {
		p, err := gap.NewScope(gap.User, "typedtext").DataPath("progress")
		if err != nil {
			return nil, fmt.Errorf("unable to find data directory: %w", err)
		}
		dir = p
	}
	store, err := progress.NewStore(utils.ExpandPath(dir))
	if err != nil {
		return nil, err
	}

	// Sessions nobody came back to in a while are not worth keeping.
	if n, err := store.RemoveOlderThan(time.Now().Add(-progressRetention)); err != nil {
		log.Debug("unable to prune progress", "error", err)
	} else if n > 0 {
		log.Debug("pruned progress", "removed", n)
	}
	return store, nil
}

const progressRetention = 90 * 24 * time.Hour

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = logCloser()
		os.Exit(1)
	}
	_ = logCloser()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	defaults := typewriter.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().Bool("debug", false, "write a debug log")
	rootCmd.PersistentFlags().BoolVarP(&plain, "plain", "p", false, "write to stdout instead of running the TUI")
	rootCmd.PersistentFlags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to use the terminal width)")
	rootCmd.PersistentFlags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")

	rootCmd.Flags().StringVar(&literalText, "text", "", "type this text instead of reading a source")
	rootCmd.Flags().BoolVar(&watchSource, "watch", false, "restart typing when the source file changes (TUI-mode only)")
	rootCmd.Flags().BoolVar(&resume, "resume", false, "continue from the saved position of this text")

	rootCmd.PersistentFlags().Duration("delay", defaults.TypingDelay, "delay between characters")
	rootCmd.PersistentFlags().Bool("randomize", defaults.RandomizeDelay, "randomize the delay between characters")
	rootCmd.PersistentFlags().Duration("seed", defaults.RandomSeed, "minimum delay when randomizing")
	rootCmd.PersistentFlags().Bool("split", defaults.SplitSentences, "put every sentence on its own line")
	rootCmd.PersistentFlags().Duration("pause", defaults.SentencePause, "pause after a period or comma")
	rootCmd.PersistentFlags().Bool("cursor", defaults.ShowCursor, "show a cursor while typing")
	rootCmd.PersistentFlags().Duration("blink", defaults.CursorBlink, "cursor blink interval")
	rootCmd.PersistentFlags().String("cursor-marker", string(defaults.CursorMarker), "cursor glyph")
	rootCmd.PersistentFlags().Bool("audio", true, "play a keystroke sound while typing")
	rootCmd.PersistentFlags().String("audio-resource", defaults.AudioResource, "keystroke sound: a builtin:NAME or a .wav/.mp3 file")
	rootCmd.PersistentFlags().Float64("volume", 1.0, "keystroke volume (0 to 2)")
	_ = rootCmd.PersistentFlags().MarkHidden("mouse")

	// Config bindings
	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
	_ = viper.BindPFlag("plain", pf.Lookup("plain"))
	_ = viper.BindPFlag("width", pf.Lookup("width"))
	_ = viper.BindPFlag("mouse", pf.Lookup("mouse"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("typing_delay", pf.Lookup("delay"))
	_ = viper.BindPFlag("randomize_delay", pf.Lookup("randomize"))
	_ = viper.BindPFlag("random_seed", pf.Lookup("seed"))
	_ = viper.BindPFlag("split_sentences", pf.Lookup("split"))
	_ = viper.BindPFlag("sentence_pause", pf.Lookup("pause"))
	_ = viper.BindPFlag("show_cursor", pf.Lookup("cursor"))
	_ = viper.BindPFlag("cursor_blink", pf.Lookup("blink"))
	_ = viper.BindPFlag("cursor_marker", pf.Lookup("cursor-marker"))
	_ = viper.BindPFlag("play_audio_cue", pf.Lookup("audio"))
	_ = viper.BindPFlag("audio_resource", pf.Lookup("audio-resource"))
	_ = viper.BindPFlag("volume", pf.Lookup("volume"))

	viper.SetDefault("width", 0)
	viper.SetDefault("progress_dir", "")

	rootCmd.AddCommand(configCmd, manCmd, resumeCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "typedtext")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "typedtext")}, dirs...)
	}

	if c := os.Getenv("TYPEDTEXT_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("typedtext")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("typedtext")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "typedtext.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
