package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// MockContext is a Context that produces no sound. Players record the calls
// made on them so tests can check the playback sequence.
type MockContext struct {
	mu      sync.Mutex
	ready   bool
	players []*MockPlayer
}

// NewMockContext creates a ready mock context.
func NewMockContext() *MockContext {
	log.Debug("creating mock audio context")
	return &MockContext{ready: true}
}

// NewPlayer creates a MockPlayer over r.
func (mc *MockContext) NewPlayer(r io.Reader) (Player, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if !mc.ready {
		return nil, fmt.Errorf("mock audio context not ready")
	}
	p := &MockPlayer{reader: r, volume: 1}
	mc.players = append(mc.players, p)
	return p, nil
}

// Close closes every player and marks the context unusable.
func (mc *MockContext) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, p := range mc.players {
		_ = p.Close()
	}
	mc.ready = false
	return nil
}

func (mc *MockContext) IsReady() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.ready
}

func (mc *MockContext) SampleRate() int   { return SampleRate }
func (mc *MockContext) ChannelCount() int { return Channels }

// Players returns the players created so far.
func (mc *MockContext) Players() []*MockPlayer {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return append([]*MockPlayer(nil), mc.players...)
}

// MockPlayer records playback calls.
type MockPlayer struct {
	mu      sync.Mutex
	reader  io.Reader
	playing bool
	closed  bool
	volume  float64
	calls   []string
}

func (mp *MockPlayer) record(call string) {
	mp.calls = append(mp.calls, call)
}

func (mp *MockPlayer) Play() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.record("play")
	mp.playing = true
}

func (mp *MockPlayer) Pause() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.record("pause")
	mp.playing = false
}

func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.playing
}

func (mp *MockPlayer) Reset() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.record("reset")
	if s, ok := mp.reader.(io.Seeker); ok {
		_, err := s.Seek(0, io.SeekStart)
		return err
	}
	return nil
}

func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if !mp.closed {
		mp.record("close")
	}
	mp.closed = true
	mp.playing = false
	return nil
}

func (mp *MockPlayer) SetVolume(volume float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.volume = volume
}

func (mp *MockPlayer) Volume() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.volume
}

// Calls returns the recorded calls in order.
func (mp *MockPlayer) Calls() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]string(nil), mp.calls...)
}

// Closed reports whether Close was called.
func (mp *MockPlayer) Closed() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.closed
}

// Read reads from the stream the player was created with.
func (mp *MockPlayer) Read(p []byte) (int, error) {
	return mp.reader.Read(p)
}
