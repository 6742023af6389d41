// Package typewriter reveals text one character at a time.
//
// An Engine owns a single typing session. SetTypedText starts a session and
// every later call replaces it. Each reveal tick publishes the visible
// prefix to a Sink, optionally plays a keystroke AudioCue and reports the
// next character to an OnCharacterTyped callback. After a '.' or ',' the
// next tick waits for the sentence pause instead of the typing delay. Once
// all characters are shown the engine blinks a trailing cursor until the
// session is replaced, suspended or closed.
//
// The engine is single-threaded. All of its methods, and every tick, must run
// on the goroutine of the scheduler.Scheduler it was built with. A
// scheduler.Loop provides such a goroutine for real-time hosts; a
// scheduler.Manual drives the engine on a virtual clock.
//
// Hosts that can be hidden (terminal focus, job control) forward those
// signals through a Lifecycle, which calls Suspend and Resume. Suspending
// keeps the reveal position, so a resume continues with exactly the next
// character.
package typewriter
