package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"

	"github.com/dgnsrekt/typedtext/typewriter"
	"github.com/dgnsrekt/typedtext/utils"
)

// ClipboardRef is the argument that reads the system clipboard.
const ClipboardRef = "@clipboard"

// maxSize bounds how much text is read from any source.
const maxSize = 8 << 20

var (
	// ErrNoSource is returned when an argument names nothing readable.
	ErrNoSource = errors.New("missing text source")
	// ErrEmpty is returned when a source holds no text.
	ErrEmpty = errors.New("source is empty")
)

var readmeNames = []string{"README.md", "README", "Readme.md", "Readme", "readme.md", "readme"}

var _ typewriter.TextResolver = (*Loader)(nil)

// Source is loaded, normalized text.
type Source struct {
	Text  string
	Title string
	// Path is the absolute file path for file sources, empty otherwise.
	Path string
	URL  string
}

// Loader resolves source arguments.
type Loader struct {
	Client    *http.Client
	Stdin     io.Reader
	Clipboard func() (string, error)
}

// NewLoader returns a loader using the process stdin, the system clipboard
// and an HTTP client with a timeout.
func NewLoader() *Loader {
	return &Loader{
		Client:    &http.Client{Timeout: 30 * time.Second},
		Stdin:     os.Stdin,
		Clipboard: clipboard.ReadAll,
	}
}

// ResolveText loads ref and returns its text.
func (l *Loader) ResolveText(ref string) (string, error) {
	src, err := l.Load(context.Background(), ref)
	if err != nil {
		return "", err
	}
	return src.Text, nil
}

// Load reads arg, which is "-" for stdin, ClipboardRef, an http(s) URL, a
// directory containing a README, or a file.
func (l *Loader) Load(ctx context.Context, arg string) (*Source, error) {
	var (
		src *Source
		raw []byte
		err error
	)
	switch {
	case arg == "-":
		src = &Source{Title: "stdin"}
		raw, err = io.ReadAll(io.LimitReader(l.Stdin, maxSize))
	case arg == ClipboardRef:
		src = &Source{Title: "clipboard"}
		var s string
		s, err = l.Clipboard()
		raw = []byte(s)
	case strings.Contains(arg, "://"):
		src, raw, err = l.fetch(ctx, arg)
	default:
		src, raw, err = readFile(arg)
	}
	if err != nil {
		return nil, err
	}

	raw = utils.RemoveFrontmatter(raw)
	name := src.Path
	if name == "" {
		name = src.URL
	}
	var text string
	if utils.IsMarkdownFile(name) {
		text = Flatten(raw)
	} else {
		text = string(raw)
	}

	src.Text = Normalize(text)
	if src.Text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, src.Title)
	}
	log.Debug("loaded source", "title", src.Title, "runes", len([]rune(src.Text)))
	return src, nil
}

func (l *Loader) fetch(ctx context.Context, arg string) (*Source, []byte, error) {
	u, err := url.ParseRequestURI(arg)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to get url: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read response: %w", err)
	}
	return &Source{Title: u.String(), URL: u.String()}, raw, nil
}

func readFile(arg string) (*Source, []byte, error) {
	if arg == "" {
		arg = "."
	}
	path := utils.ExpandPath(arg)

	st, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoSource, err)
	}
	if st.IsDir() {
		if path, err = findReadme(path); err != nil {
			return nil, nil, err
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(f, maxSize))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read file: %w", err)
	}
	return &Source{Title: filepath.Base(abs), Path: abs}, raw, nil
}

func findReadme(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSource, err)
	}
	for _, name := range readmeNames {
		for _, e := range entries {
			if !e.IsDir() && e.Name() == name {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return "", fmt.Errorf("%w: no README in %s", ErrNoSource, dir)
}

// Normalize composes text to NFC, converts line endings to '\n', drops
// control characters other than newline and tab, and trims trailing
// whitespace.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(norm.NFC.String(s), " \t\n")
}
