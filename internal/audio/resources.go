package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"

	"github.com/dgnsrekt/typedtext/utils"
)

// BuiltinPrefix marks sounds synthesized by this package.
const BuiltinPrefix = "builtin:"

// ErrUnknownResource is returned for references that name no sound.
var ErrUnknownResource = errors.New("unknown audio resource")

// maxResourceLength bounds decoded files so a long song cannot fill memory.
const maxResourceLength = 30 * time.Second

// builtins maps builtin names to their synthesizers.
var builtins = map[string]func() beep.Streamer{
	"keystrokes": keystrokes,
	"click":      func() beep.Streamer { return beep.Seq(newClick(7), beep.Silence(sampleRate.N(120*time.Millisecond))) },
}

// Builtins returns the names of the builtin sounds.
func Builtins() []string {
	return []string{BuiltinPrefix + "keystrokes", BuiltinPrefix + "click"}
}

// LoadPCM resolves ref to 16-bit little-endian mono PCM at SampleRate. A ref
// is either "builtin:NAME" or a path to a WAV or MP3 file.
func LoadPCM(ref string) ([]byte, error) {
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		synth, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownResource, ref)
		}
		return encodePCM(synth())
	}

	path := utils.ExpandPath(ref)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownResource, err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: unsupported format %q", ErrUnknownResource, filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var stream beep.Streamer = beep.Take(format.SampleRate.N(maxResourceLength), s)
	if format.SampleRate != sampleRate {
		stream = beep.Resample(4, format.SampleRate, sampleRate, stream)
	}
	return encodePCM(stream)
}

// encodePCM drains s into mono signed 16-bit little-endian samples.
func encodePCM(s beep.Streamer) ([]byte, error) {
	var (
		out []byte
		buf = make([][2]float64, 512)
	)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			v := (frame[0] + frame[1]) / 2
			v = math.Max(-1, math.Min(1, v))
			sample := int16(v * math.MaxInt16)
			out = append(out, byte(sample), byte(sample>>8))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty sound", ErrUnknownResource)
	}
	return out, nil
}

// keystrokes synthesizes a second of uneven typing: clicks of varying
// brightness separated by irregular gaps.
func keystrokes() beep.Streamer {
	rng := rand.New(rand.NewPCG(1975, 175))
	var parts []beep.Streamer
	total := 0
	for total < sampleRate.N(time.Second) {
		click := newClick(rng.Uint64())
		gap := sampleRate.N(time.Duration(110+rng.IntN(120)) * time.Millisecond)
		vol := &effects.Volume{Streamer: click, Base: 2, Volume: -rng.Float64()}
		parts = append(parts, vol, beep.Silence(gap))
		total += click.Len() + gap
	}
	return beep.Seq(parts...)
}

// click is a short burst of decaying noise with a low thump underneath.
type click struct {
	rng      *rand.Rand
	position int
	length   int
}

func newClick(seed uint64) *click {
	return &click{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b9)),
		length: sampleRate.N(12 * time.Millisecond),
	}
}

// Len returns the click length in samples.
func (c *click) Len() int { return c.length }

func (c *click) Stream(samples [][2]float64) (n int, ok bool) {
	if c.position >= c.length {
		return 0, false
	}
	for i := range samples {
		if c.position >= c.length {
			return i, true
		}
		t := float64(c.position) / float64(sampleRate)
		decay := math.Exp(-float64(c.position) / float64(c.length) * 6)
		noise := c.rng.Float64()*2 - 1
		thump := math.Sin(2 * math.Pi * 180 * t)
		val := (0.6*noise + 0.4*thump) * decay * 0.8

		samples[i][0] = val
		samples[i][1] = val
		c.position++
	}
	return len(samples), true
}

func (c *click) Err() error { return nil }

// loopReader reads data over and over. Seek rewinds within one loop.
type loopReader struct {
	data []byte
	pos  int
}

func newLoopReader(data []byte) *loopReader {
	return &loopReader{data: data}
}

func (l *loopReader) Read(p []byte) (int, error) {
	if len(l.data) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		c := copy(p[n:], l.data[l.pos:])
		n += c
		l.pos = (l.pos + c) % len(l.data)
	}
	return n, nil
}

func (l *loopReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(l.pos) + offset
	case io.SeekEnd:
		abs = int64(len(l.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative position %d", abs)
	}
	if len(l.data) > 0 {
		abs %= int64(len(l.data))
	}
	l.pos = int(abs)
	return abs, nil
}
