// Package sentence prepares text for the typewriter: it breaks multi-sentence
// text onto separate lines and tells which characters end a sentence or
// clause.
package sentence

import "strings"

// Split puts every sentence of text on its own line by turning each ". "
// into ".\n". The period that terminates the text is left alone, as are
// periods that are not followed by a space (decimals, abbreviations at the
// end of the text). Text with at most one period is returned unchanged.
func Split(text string) string {
	first := strings.IndexByte(text, '.')
	if first == strings.LastIndexByte(text, '.') {
		return text
	}

	out := text
	idx := first
	for {
		// Replacing ". " with ".\n" keeps byte offsets stable.
		out = strings.Replace(out, ". ", ".\n", 1)

		next := strings.IndexByte(out[idx+1:], '.')
		if next < 0 {
			break
		}
		idx += next + 1
		if idx == strings.LastIndexByte(out, '.') {
			break
		}
	}
	return out
}

// IsPause reports whether r is followed by a sentence pause when typed.
func IsPause(r rune) bool {
	return r == '.' || r == ','
}
