// Package audio plays the keystroke sound while text is typed. Output goes
// through oto/v3; a mock context stands in where no audio device exists.
package audio
