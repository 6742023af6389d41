package typewriter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Default configuration values.
const (
	DefaultTypingDelay   = 175 * time.Millisecond
	DefaultRandomSeed    = 75 * time.Millisecond
	DefaultSentencePause = 1500 * time.Millisecond
	DefaultCursorBlink   = 530 * time.Millisecond

	// DefaultAudioResource names the keystroke sound bundled with the audio
	// backend.
	DefaultAudioResource = "builtin:keystrokes"

	// DefaultCursorMarker is the trailing glyph shown while typing and
	// blinking.
	DefaultCursorMarker = '|'

	// blank replaces the cursor marker on the off phase of a blink so the
	// text keeps its width.
	blank = ' '
)

// Config controls a typing session. The engine takes a snapshot of it when
// text is set; later changes apply to the next session.
type Config struct {
	// Base delay between character reveals.
	TypingDelay time.Duration `yaml:"typing_delay" mapstructure:"typing_delay"`

	// Redraw the delay on every tick as RandomSeed plus a random amount
	// bounded by the previous delay.
	RandomizeDelay bool          `yaml:"randomize_delay" mapstructure:"randomize_delay"`
	RandomSeed     time.Duration `yaml:"random_seed" mapstructure:"random_seed"`

	// Put each sentence on its own line before typing.
	SplitSentences bool `yaml:"split_sentences" mapstructure:"split_sentences"`

	// Delay used instead of the typing delay after a '.' or ','.
	SentencePause time.Duration `yaml:"sentence_pause" mapstructure:"sentence_pause"`

	// Show a cursor while typing and blink it once typing completes.
	ShowCursor   bool          `yaml:"show_cursor" mapstructure:"show_cursor"`
	CursorBlink  time.Duration `yaml:"cursor_blink" mapstructure:"cursor_blink"`
	CursorMarker rune          `yaml:"cursor_marker" mapstructure:"cursor_marker"`

	// Play a keystroke sound while characters are revealed.
	PlayAudioCue  bool   `yaml:"play_audio_cue" mapstructure:"play_audio_cue"`
	AudioResource string `yaml:"audio_resource" mapstructure:"audio_resource"`
}

// DefaultConfig returns the default configuration. Audio is off because it
// needs an AudioCue; hosts that provide one turn it on.
func DefaultConfig() Config {
	return Config{
		TypingDelay:    DefaultTypingDelay,
		RandomizeDelay: true,
		RandomSeed:     DefaultRandomSeed,
		SplitSentences: true,
		SentencePause:  DefaultSentencePause,
		ShowCursor:     true,
		CursorBlink:    DefaultCursorBlink,
		CursorMarker:   DefaultCursorMarker,
		PlayAudioCue:   false,
		AudioResource:  DefaultAudioResource,
	}
}

// Validate checks that every duration is non-negative and the cursor marker
// is usable.
func (c Config) Validate() error {
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"typing delay", c.TypingDelay},
		{"random seed", c.RandomSeed},
		{"sentence pause", c.SentencePause},
		{"cursor blink", c.CursorBlink},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidArgument, d.name, d.d)
		}
	}
	if c.CursorMarker == blank || !utf8.ValidRune(c.CursorMarker) {
		return fmt.Errorf("%w: unusable cursor marker %q", ErrInvalidArgument, c.CursorMarker)
	}
	return nil
}

// marker returns the cursor marker, falling back to the default for a zero
// value.
func (c Config) marker() rune {
	if c.CursorMarker == 0 {
		return DefaultCursorMarker
	}
	return c.CursorMarker
}

// ApplyOptions returns a copy of c updated from a named-options bundle.
// Keys are matched case-insensitively with '_' and '-' ignored, so both
// "typing_delay_ms" and "typingDelayMs" are accepted. Millisecond keys take
// integers, floats, time.Duration values or duration strings ("175ms").
func (c Config) ApplyOptions(opts map[string]any) (Config, error) {
	for key, value := range opts {
		var err error
		switch normalizeKey(key) {
		case "typingdelayms", "typingdelay", "typingspeed":
			c.TypingDelay, err = toDuration(value)
		case "randomizedelay", "randomizetyping":
			c.RandomizeDelay, err = toBool(value)
		case "randomseedms", "randomseed":
			c.RandomSeed, err = toDuration(value)
		case "splitsentences":
			c.SplitSentences, err = toBool(value)
		case "sentencepausems", "sentencepause":
			c.SentencePause, err = toDuration(value)
		case "showcursor":
			c.ShowCursor, err = toBool(value)
		case "cursorblinkms", "cursorblink", "cursorblinkdelay":
			c.CursorBlink, err = toDuration(value)
		case "cursormarker":
			c.CursorMarker, err = toRune(value)
		case "playaudiocue":
			c.PlayAudioCue, err = toBool(value)
		case "audioresourceref", "audioresource":
			c.AudioResource, err = toString(value)
		default:
			return c, fmt.Errorf("%w: unknown option %q", ErrInvalidArgument, key)
		}
		if err != nil {
			return c, fmt.Errorf("%w: option %q: %v", ErrInvalidArgument, key, err)
		}
	}
	return c, c.Validate()
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
}

func toDuration(v any) (time.Duration, error) {
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case int32:
		return time.Duration(v) * time.Millisecond, nil
	case uint:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		if ms, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(ms * float64(time.Millisecond)), nil
		}
		return time.ParseDuration(v)
	default:
		return 0, fmt.Errorf("cannot use %T as a duration", v)
	}
}

func toBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("cannot use %T as a bool", v)
	}
}

func toString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("cannot use %T as a string", v)
	}
}

func toRune(v any) (rune, error) {
	switch v := v.(type) {
	case rune:
		return v, nil
	case string:
		if utf8.RuneCountInString(v) != 1 {
			return 0, fmt.Errorf("cursor marker must be a single character, got %q", v)
		}
		r, _ := utf8.DecodeRuneInString(v)
		return r, nil
	default:
		return 0, fmt.Errorf("cannot use %T as a character", v)
	}
}
