package progress

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

const fileExt = ".yaml.zst"

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("progress snapshot not found")

// Snapshot records the reveal position within one text.
type Snapshot struct {
	Key       string    `yaml:"key"`
	Title     string    `yaml:"title"`
	Source    string    `yaml:"source,omitempty"`
	Text      string    `yaml:"text"`
	Index     int       `yaml:"index"`
	Length    int       `yaml:"length"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Done reports whether every character had been revealed.
func (s Snapshot) Done() bool {
	return s.Index >= s.Length
}

// Percent returns the revealed share of the text, from 0 to 100.
func (s Snapshot) Percent() float64 {
	if s.Length == 0 {
		return 100
	}
	return float64(s.Index) / float64(s.Length) * 100
}

// Key derives the snapshot key of a text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:12])
}

// Store keeps snapshots in a directory.
type Store struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStore opens the store in dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create progress directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{
		dir:     dir,
		now:     time.Now,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes snap, filling in its key, length and timestamp. The previous
// snapshot for the same text is replaced atomically.
func (s *Store) Save(snap Snapshot) (Snapshot, error) {
	if snap.Key == "" {
		snap.Key = Key(snap.Text)
	}
	if snap.Length == 0 {
		snap.Length = len([]rune(snap.Text))
	}
	snap.UpdatedAt = s.now().UTC().Truncate(time.Second)

	data, err := yaml.Marshal(snap)
	if err != nil {
		return snap, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	compressed := s.encoder.EncodeAll(data, nil)
	if err := s.writeFile(s.path(snap.Key), compressed); err != nil {
		return snap, fmt.Errorf("failed to write snapshot: %w", err)
	}
	log.Debug("progress saved", "key", snap.Key, "index", snap.Index, "length", snap.Length)
	return snap, nil
}

// Load returns the snapshot stored under key.
func (s *Store) Load(key string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(s.path(key))
}

// LoadText returns the snapshot for text, if one exists.
func (s *Store) LoadText(text string) (Snapshot, error) {
	return s.Load(Key(text))
}

// List returns every readable snapshot, most recently updated first.
// Unreadable files are skipped.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var snaps []Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		snap, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			log.Warn("skipping unreadable progress file", "file", e.Name(), "err", err)
			continue
		}
		snaps = append(snaps, snap)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].UpdatedAt.Equal(snaps[j].UpdatedAt) {
			return snaps[i].Key < snaps[j].Key
		}
		return snaps[i].UpdatedAt.After(snaps[j].UpdatedAt)
	})
	return snaps, nil
}

// Delete removes the snapshot stored under key. Deleting a missing
// snapshot is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveOlderThan deletes snapshots last updated before cutoff and returns
// how many were removed.
func (s *Store) RemoveOlderThan(cutoff time.Time) (int, error) {
	snaps, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, snap := range snaps {
		if snap.UpdatedAt.Before(cutoff) {
			if err := s.Delete(snap.Key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// Close releases the compression resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoder.Close()
	return s.encoder.Close()
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *Store) read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}

	raw, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to decompress %s: %w", filepath.Base(path), err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// writeFile writes data through a temporary file so readers never see a
// partial snapshot.
func (s *Store) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
