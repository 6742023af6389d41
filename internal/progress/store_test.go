package progress

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "progress"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSaveLoad(t *testing.T) {
	s, _ := newTestStore(t)

	saved, err := s.Save(Snapshot{Title: "poem.md", Text: "Roses are red.", Index: 5})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Key != Key("Roses are red.") {
		t.Errorf("unexpected key %q", saved.Key)
	}
	if saved.Length != 14 {
		t.Errorf("expected length 14, got %d", saved.Length)
	}

	got, err := s.LoadText("Roses are red.")
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("snapshot mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSaveReplaces(t *testing.T) {
	s, _ := newTestStore(t)

	_, _ = s.Save(Snapshot{Text: "abc", Index: 1})
	_, _ = s.Save(Snapshot{Text: "abc", Index: 2})

	snaps, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Index != 2 {
		t.Errorf("expected one snapshot at index 2, got %+v", snaps)
	}
}

func TestLengthCountsRunes(t *testing.T) {
	s, _ := newTestStore(t)

	snap, _ := s.Save(Snapshot{Text: "naïve café"})
	if snap.Length != 10 {
		t.Errorf("expected 10 runes, got %d", snap.Length)
	}
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderAndCorruption(t *testing.T) {
	s, now := newTestStore(t)

	_, _ = s.Save(Snapshot{Title: "old", Text: "old"})
	*now = now.Add(time.Hour)
	_, _ = s.Save(Snapshot{Title: "new", Text: "new"})

	if err := os.WriteFile(filepath.Join(s.Dir(), "junk"+fileExt), []byte("not zstd"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "README"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	snaps, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var titles []string
	for _, snap := range snaps {
		titles = append(titles, snap.Title)
	}
	if diff := cmp.Diff([]string{"new", "old"}, titles); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteAndPrune(t *testing.T) {
	s, now := newTestStore(t)

	a, _ := s.Save(Snapshot{Text: "a"})
	*now = now.Add(48 * time.Hour)
	_, _ = s.Save(Snapshot{Text: "b"})
	c, _ := s.Save(Snapshot{Text: "c"})

	if err := s.Delete(c.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(c.Key); err != nil {
		t.Errorf("deleting twice: %v", err)
	}

	removed, err := s.RemoveOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("RemoveOlderThan: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := s.Load(a.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the old snapshot gone, got %v", err)
	}

	snaps, _ := s.List()
	if len(snaps) != 1 || snaps[0].Text != "b" {
		t.Errorf("expected only %q left, got %+v", "b", snaps)
	}
}

func TestSnapshotProgress(t *testing.T) {
	tests := []struct {
		snap    Snapshot
		done    bool
		percent float64
	}{
		{Snapshot{Index: 0, Length: 4}, false, 0},
		{Snapshot{Index: 1, Length: 4}, false, 25},
		{Snapshot{Index: 4, Length: 4}, true, 100},
		{Snapshot{Index: 0, Length: 0}, true, 100},
	}
	for _, tt := range tests {
		if got := tt.snap.Done(); got != tt.done {
			t.Errorf("%+v: Done = %v, want %v", tt.snap, got, tt.done)
		}
		if got := tt.snap.Percent(); got != tt.percent {
			t.Errorf("%+v: Percent = %v, want %v", tt.snap, got, tt.percent)
		}
	}
}

func TestNoTempFilesLeft(t *testing.T) {
	s, _ := newTestStore(t)
	_, _ = s.Save(Snapshot{Text: "x"})

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected a single snapshot file, got %v", names)
	}
}
