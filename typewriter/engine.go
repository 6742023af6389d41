package typewriter

import (
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/typedtext/typewriter/scheduler"
	"github.com/dgnsrekt/typedtext/typewriter/sentence"
)

// session is the mutable state of one reveal run.
type session struct {
	cfg       Config
	source    []rune
	index     int
	delay     time.Duration
	displayed string
	resumeTo  State

	audio   bool // cue prepared for this session
	playing bool // cue started and not paused or stopped since
}

// Engine drives the typewriter effect. See the package documentation for
// the threading rules.
type Engine struct {
	sink     Sink
	sched    scheduler.Scheduler
	cue      AudioCue
	resolver TextResolver
	rng      *rand.Rand
	logger   *log.Logger

	cfg    Config
	onChar func(r rune, index int)
	onDone func()

	sm      *stateMachine
	sess    *session
	pending scheduler.Token
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig sets the configuration used for sessions.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}
}

// WithOptions applies a named-options bundle on top of the current
// configuration. See Config.ApplyOptions for the recognized keys.
func WithOptions(opts map[string]any) Option {
	return func(e *Engine) error {
		cfg, err := e.cfg.ApplyOptions(opts)
		if err != nil {
			return err
		}
		e.cfg = cfg
		return nil
	}
}

// WithAudioCue sets the keystroke sound player.
func WithAudioCue(cue AudioCue) Option {
	return func(e *Engine) error {
		e.cue = cue
		return nil
	}
}

// WithRand sets the random source used for delay jitter. Tests pass a
// seeded source to get a reproducible delay sequence.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) error {
		if r == nil {
			return ErrInvalidArgument
		}
		e.rng = r
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) error {
		if l != nil {
			e.logger = l
		}
		return nil
	}
}

// WithTextResolver sets the resolver used by SetTypedTextFrom.
func WithTextResolver(r TextResolver) Option {
	return func(e *Engine) error {
		e.resolver = r
		return nil
	}
}

// New creates an engine that publishes to sink and schedules on sched.
func New(sink Sink, sched scheduler.Scheduler, opts ...Option) (*Engine, error) {
	if sink == nil || sched == nil {
		return nil, newError("New", ErrInvalidArgument, "sink and scheduler are required")
	}

	now := uint64(time.Now().UnixNano())
	e := &Engine{
		sink:   sink,
		sched:  sched,
		rng:    rand.New(rand.NewPCG(now, now>>17)),
		logger: log.Default().WithPrefix("typewriter"),
		cfg:    DefaultConfig(),
		sm:     newStateMachine(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, &Error{Op: "New", Err: err}
		}
	}
	e.sm.onChange = func(from, to State) {
		e.logger.Debug("state change", "from", from, "to", to)
	}
	return e, nil
}

// SetTypedText replaces the current session with one typing text.
//
// If the keystroke audio cannot be prepared the session still starts and an
// error wrapping ErrResourceUnavailable is returned.
func (e *Engine) SetTypedText(text string) error {
	if !utf8.ValidString(text) {
		return newError("SetTypedText", ErrInvalidArgument, "text is not valid UTF-8")
	}
	return e.start(text)
}

// SetTypedTextFrom resolves ref with the configured TextResolver and types
// the result.
func (e *Engine) SetTypedTextFrom(ref string) error {
	if e.resolver == nil {
		return newError("SetTypedTextFrom", ErrInvalidArgument, "no text resolver configured")
	}
	text, err := e.resolver.ResolveText(ref)
	if err != nil {
		return newError("SetTypedTextFrom", ErrInvalidArgument, "resolve %q: %w", ref, err).
			WithContext("ref", ref)
	}
	if err := e.SetTypedText(text); err != nil {
		if te, ok := err.(*Error); ok {
			te.Op = "SetTypedTextFrom"
		}
		return err
	}
	return nil
}

func (e *Engine) start(text string) error {
	cfg := e.cfg

	e.cancelPending()
	if prev := e.sess; prev != nil && prev.audio {
		e.cue.Stop()
	}

	source := text
	if cfg.SplitSentences {
		source = sentence.Split(text)
	}
	s := &session{
		cfg:    cfg,
		source: []rune(source),
		delay:  cfg.TypingDelay,
	}
	e.sess = s
	e.sm.transition(StateRevealing)
	e.publish(s, "")

	var audioErr error
	if cfg.PlayAudioCue {
		audioErr = e.prepareAudio(s)
	}

	e.pending = e.sched.Schedule(s.delay, func() { e.revealTick(s) })
	e.logger.Debug("typing started", "runes", len(s.source), "delay", s.delay, "audio", s.audio)
	return audioErr
}

func (e *Engine) prepareAudio(s *session) error {
	ref := s.cfg.AudioResource
	switch {
	case e.cue == nil:
		return newError("SetTypedText", ErrResourceUnavailable, "no audio cue configured")
	case ref == "":
		return newError("SetTypedText", ErrResourceUnavailable, "no audio resource set")
	}
	if err := e.cue.Prepare(ref); err != nil {
		e.logger.Warn("keystroke audio unavailable, typing without sound", "resource", ref, "err", err)
		return newError("SetTypedText", ErrResourceUnavailable, "prepare %q: %w", ref, err).
			WithContext("resource", ref)
	}
	s.audio = true
	return nil
}

// revealTick shows the prefix up to the session index and schedules the
// next tick, or completes the session once the index reaches the end.
func (e *Engine) revealTick(s *session) {
	if e.sess != s || e.sm.current != StateRevealing {
		return
	}
	e.pending = 0

	i, n := s.index, len(s.source)
	var b strings.Builder
	b.WriteString(string(s.source[:i]))
	if s.cfg.ShowCursor && i < n {
		b.WriteRune(s.cfg.marker())
	}

	if s.cfg.RandomizeDelay {
		e.randomizeDelay(s)
	}
	if s.audio {
		e.cue.Start()
		s.playing = true
	}
	e.publish(s, b.String())

	if e.onChar != nil && i < n {
		e.onChar(s.source[i], i)
		// The callback may have replaced, closed or suspended the session.
		if e.sess != s {
			return
		}
		if e.sm.current == StateSuspended {
			s.index = i + 1
			return
		}
	}

	if i < n {
		e.pending = e.sched.Schedule(s.delay, func() { e.revealTick(s) })
		if i != 0 && sentence.IsPause(s.source[i-1]) {
			e.sched.Cancel(e.pending)
			if s.audio {
				e.cue.Pause()
				s.playing = false
			}
			e.pending = e.sched.Schedule(s.cfg.SentencePause, func() { e.revealTick(s) })
		}
		s.index = i + 1
		return
	}

	e.complete(s)
}

func (e *Engine) complete(s *session) {
	e.cancelPending()
	if s.audio {
		e.cue.Stop()
		s.playing = false
	}
	e.sm.transition(StateCompleted)
	e.logger.Debug("typing completed", "runes", len(s.source))

	if e.onDone != nil {
		e.onDone()
		if e.sess != s || e.sm.current != StateCompleted {
			return
		}
	}
	if s.cfg.ShowCursor {
		e.sm.transition(StateCursorBlinking)
		e.pending = e.sched.Schedule(s.cfg.CursorBlink, func() { e.blinkTick(s) })
	}
}

// randomizeDelay redraws the delay as the seed plus a uniform amount below
// the previous delay, in whole milliseconds.
func (e *Engine) randomizeDelay(s *session) {
	if s.delay == 0 {
		s.delay = s.cfg.RandomSeed
	}
	var jitter int64
	if bound := s.delay.Milliseconds(); bound > 0 {
		jitter = e.rng.Int64N(bound)
	}
	s.delay = s.cfg.RandomSeed + time.Duration(jitter)*time.Millisecond
}

func (e *Engine) blinkTick(s *session) {
	if e.sess != s || e.sm.current != StateCursorBlinking {
		return
	}
	e.publish(s, nextBlink(s.displayed, s.cfg.marker()))
	e.pending = e.sched.Schedule(s.cfg.CursorBlink, func() { e.blinkTick(s) })
}

// Suspend pauses the session, keeping its position. It applies while
// revealing or blinking and is a no-op before any text is set.
func (e *Engine) Suspend() error {
	switch e.sm.current {
	case StateIdle:
		return nil
	case StateRevealing, StateCursorBlinking:
	default:
		return newError("Suspend", ErrInvalidState, "cannot suspend while %s", e.sm.current)
	}

	s := e.sess
	e.cancelPending()
	if s.playing {
		e.cue.Pause()
		s.playing = false
	}
	s.resumeTo = e.sm.current
	e.sm.transition(StateSuspended)
	e.logger.Debug("typing suspended", "index", s.index, "resume_to", s.resumeTo)
	return nil
}

// Resume continues a suspended session where it stopped. It is a no-op
// before any text is set.
func (e *Engine) Resume() error {
	switch e.sm.current {
	case StateIdle:
		return nil
	case StateSuspended:
	default:
		return newError("Resume", ErrInvalidState, "cannot resume while %s", e.sm.current)
	}

	s := e.sess
	e.sm.transition(s.resumeTo)
	switch s.resumeTo {
	case StateRevealing:
		if s.audio && s.index > 0 && s.index < len(s.source) {
			e.cue.Start()
			s.playing = true
		}
		e.pending = e.sched.Schedule(s.delay, func() { e.revealTick(s) })
	case StateCursorBlinking:
		e.pending = e.sched.Schedule(s.cfg.CursorBlink, func() { e.blinkTick(s) })
	}
	e.logger.Debug("typing resumed", "index", s.index, "state", s.resumeTo)
	return nil
}

// Progress returns the number of characters revealed so far.
func (e *Engine) Progress() int {
	if e.sess == nil {
		return 0
	}
	return e.sess.index
}

// RestoreProgress moves the reveal position to index, for hosts that persist
// progress. The displayed text is left as is; it catches up on the next
// reveal tick.
func (e *Engine) RestoreProgress(index int) error {
	if e.sess == nil {
		return newError("RestoreProgress", ErrInvalidState, "no text loaded")
	}
	if n := len(e.sess.source); index < 0 || index > n {
		return newError("RestoreProgress", ErrInvalidState, "index %d outside [0, %d]", index, n).
			WithContext("index", index)
	}
	e.sess.index = index
	return nil
}

// Close ends the session and releases the audio cue. The engine can be
// reused by setting new text.
func (e *Engine) Close() {
	e.cancelPending()
	if s := e.sess; s != nil && s.audio {
		e.cue.Stop()
		s.playing = false
	}
	e.sess = nil
	e.sm.transition(StateIdle)
}

// SetTypingDelay sets the base delay between characters.
func (e *Engine) SetTypingDelay(d time.Duration) error {
	if d < 0 {
		return newError("SetTypingDelay", ErrInvalidArgument, "negative delay %v", d)
	}
	e.cfg.TypingDelay = d
	return nil
}

// SetRandomizeDelay turns delay jitter on or off and sets its seed.
func (e *Engine) SetRandomizeDelay(enabled bool, seed time.Duration) error {
	if seed < 0 {
		return newError("SetRandomizeDelay", ErrInvalidArgument, "negative seed %v", seed)
	}
	e.cfg.RandomizeDelay = enabled
	e.cfg.RandomSeed = seed
	return nil
}

// SetSplitSentences controls whether sentences are put on their own lines.
func (e *Engine) SetSplitSentences(enabled bool) {
	e.cfg.SplitSentences = enabled
}

// SetSentencePause sets the delay used after '.' and ','.
func (e *Engine) SetSentencePause(d time.Duration) error {
	if d < 0 {
		return newError("SetSentencePause", ErrInvalidArgument, "negative pause %v", d)
	}
	e.cfg.SentencePause = d
	return nil
}

// SetShowCursor controls the typing and blinking cursor.
func (e *Engine) SetShowCursor(enabled bool) {
	e.cfg.ShowCursor = enabled
}

// SetCursorBlinkDelay sets the blink cadence and turns the cursor on.
func (e *Engine) SetCursorBlinkDelay(d time.Duration) error {
	if d < 0 {
		return newError("SetCursorBlinkDelay", ErrInvalidArgument, "negative blink delay %v", d)
	}
	e.cfg.ShowCursor = true
	e.cfg.CursorBlink = d
	return nil
}

// SetPlayAudioCue turns the keystroke sound on or off. An optional resource
// reference replaces the configured sound.
func (e *Engine) SetPlayAudioCue(enabled bool, ref ...string) {
	e.cfg.PlayAudioCue = enabled
	if len(ref) > 0 {
		e.cfg.AudioResource = ref[0]
	}
}

// OnCharacterTyped registers fn to be called on each reveal tick with the
// next character and its index. Pass nil to remove it.
func (e *Engine) OnCharacterTyped(fn func(r rune, index int)) {
	e.onChar = fn
}

// OnComplete registers fn to be called when every character is shown.
func (e *Engine) OnComplete(fn func()) {
	e.onDone = fn
}

// State returns the current state.
func (e *Engine) State() State {
	return e.sm.current
}

// Text returns the text being typed, after sentence splitting.
func (e *Engine) Text() string {
	if e.sess == nil {
		return ""
	}
	return string(e.sess.source)
}

// Len returns the number of characters in the text being typed.
func (e *Engine) Len() int {
	if e.sess == nil {
		return 0
	}
	return len(e.sess.source)
}

// Displayed returns the text last published to the sink.
func (e *Engine) Displayed() string {
	if e.sess == nil {
		return ""
	}
	return e.sess.displayed
}

// Delay returns the delay that will precede the next regular reveal tick.
func (e *Engine) Delay() time.Duration {
	if e.sess == nil {
		return e.cfg.TypingDelay
	}
	return e.sess.delay
}

// Config returns the configuration the next session will use.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) publish(s *session, text string) {
	s.displayed = text
	e.sink.SetText(text)
}

func (e *Engine) cancelPending() {
	if e.pending != 0 {
		e.sched.Cancel(e.pending)
		e.pending = 0
	}
}
