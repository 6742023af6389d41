package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlainWriterAppends(t *testing.T) {
	var buf bytes.Buffer
	w := newPlainWriter(&buf, false, '|')

	for _, s := range []string{"", "a", "ab", "ab\nc"} {
		w.SetText(s)
	}
	w.finish()

	if got, want := buf.String(), "ab\nc\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlainWriterRewritesOnRestart(t *testing.T) {
	var buf bytes.Buffer
	w := newPlainWriter(&buf, false, '|')

	w.SetText("abc")
	w.SetText("x")

	if got, want := buf.String(), "abc\nx"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlainWriterErasesCursor(t *testing.T) {
	var buf bytes.Buffer
	w := newPlainWriter(&buf, true, '|')

	w.SetText("a|")
	buf.Reset()
	w.SetText("ab|")

	out := buf.String()
	if !strings.Contains(out, "\x1b[1D") {
		t.Errorf("expected a cursor-back sequence, got %q", out)
	}
	if !strings.HasSuffix(out, "b|") {
		t.Errorf("expected the new glyphs to be written, got %q", out)
	}
	if w.shown != "ab|" {
		t.Errorf("expected shown %q, got %q", "ab|", w.shown)
	}
}

func TestPlainWriterFinishDropsCursor(t *testing.T) {
	var buf bytes.Buffer
	w := newPlainWriter(&buf, true, '|')

	w.SetText("done|")
	w.finish()

	if w.shown != "" {
		t.Errorf("expected the writer to reset, got %q", w.shown)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("expected a final newline, got %q", buf.String())
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"abc", "abd", "ab"},
		{"", "abc", ""},
		{"abc", "abc", "abc"},
		{"caf\u00e9", "caf\u00e8", "caf"},
		{"ab|", "ab ", "ab"},
	}
	for _, tt := range tests {
		if got := commonPrefix(tt.a, tt.b); got != tt.want {
			t.Errorf("commonPrefix(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
