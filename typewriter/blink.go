package typewriter

import "unicode/utf8"

// nextBlink toggles the cursor at the end of displayed. A trailing marker
// becomes a blank, a trailing blank becomes the marker, and anything else
// gets the marker appended.
func nextBlink(displayed string, marker rune) string {
	last, size := utf8.DecodeLastRuneInString(displayed)
	if size == 0 {
		return string(marker)
	}
	head := displayed[:len(displayed)-size]
	switch last {
	case marker:
		return head + string(blank)
	case blank:
		return head + string(marker)
	default:
		return displayed + string(marker)
	}
}
