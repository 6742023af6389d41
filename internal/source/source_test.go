package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"controls", "a\x07b\tc\x1b", "ab\tc"},
		{"trailing", "done.  \n\n", "done."},
		{"invalid utf8", "a\xffb", "a\uFFFDb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "story.md")
	if err := os.WriteFile(md, []byte("---\ntitle: x\n---\n# Once\n\nUpon a *time*.\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("# not a heading\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()

	src, err := l.Load(context.Background(), md)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Text != "Once\n\nUpon a time." {
		t.Errorf("unexpected text %q", src.Text)
	}
	if src.Title != "story.md" || src.Path != md {
		t.Errorf("unexpected title/path %q/%q", src.Title, src.Path)
	}

	src, err = l.Load(context.Background(), txt)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Text != "# not a heading" {
		t.Errorf("plain text should be kept verbatim, got %q", src.Text)
	}
}

func TestLoadDirectoryReadme(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("Hello there.\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewLoader().Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Text != "Hello there." {
		t.Errorf("unexpected text %q", src.Text)
	}

	empty := t.TempDir()
	if _, err := NewLoader().Load(context.Background(), empty); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

func TestLoadStdinAndClipboard(t *testing.T) {
	l := &Loader{
		Stdin:     strings.NewReader("piped *text*\n"),
		Clipboard: func() (string, error) { return "copied", nil },
	}

	src, err := l.Load(context.Background(), "-")
	if err != nil {
		t.Fatalf("Load stdin: %v", err)
	}
	if src.Text != "piped text" || src.Title != "stdin" {
		t.Errorf("unexpected stdin source %+v", src)
	}

	text, err := l.ResolveText(ClipboardRef)
	if err != nil {
		t.Fatalf("ResolveText: %v", err)
	}
	if text != "copied" {
		t.Errorf("unexpected clipboard text %q", text)
	}

	l.Clipboard = func() (string, error) { return "", errors.New("no clipboard") }
	if _, err := l.Load(context.Background(), ClipboardRef); err == nil {
		t.Error("expected the clipboard error")
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doc.md":
			_, _ = w.Write([]byte("## Remote\n\nFetched text.\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := &Loader{Client: srv.Client()}

	src, err := l.Load(context.Background(), srv.URL+"/doc.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Text != "Remote\n\nFetched text." {
		t.Errorf("unexpected text %q", src.Text)
	}
	if src.URL != srv.URL+"/doc.md" || src.Path != "" {
		t.Errorf("unexpected url/path %q/%q", src.URL, src.Path)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing.md"); err == nil {
		t.Error("expected an error for a 404")
	}
	if _, err := l.Load(context.Background(), "ftp://example.com/x.md"); err == nil {
		t.Error("expected an error for an unsupported protocol")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.md")
	if err := os.WriteFile(blank, []byte("  \n\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	if _, err := l.Load(context.Background(), blank); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := l.Load(context.Background(), filepath.Join(dir, "missing.md")); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	if _, err := l.ResolveText(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("expected ResolveText to fail")
	}
}
