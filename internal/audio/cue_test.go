package audio

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCuePlaybackSequence(t *testing.T) {
	ctx := NewMockContext()
	cue := NewCue(ctx, 0.5)

	if err := cue.Prepare(BuiltinPrefix + "keystrokes"); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	cue.Start()
	cue.Start()
	cue.Pause()
	cue.Start()
	cue.Stop()

	players := ctx.Players()
	if len(players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(players))
	}
	want := []string{"play", "pause", "play", "pause", "reset"}
	if diff := cmp.Diff(want, players[0].Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if players[0].Volume() != 0.5 {
		t.Errorf("expected volume 0.5, got %v", players[0].Volume())
	}
}

func TestCueReusesPlayerForSameResource(t *testing.T) {
	ctx := NewMockContext()
	cue := NewCue(ctx, 1)
	loads := 0
	cue.load = func(ref string) ([]byte, error) {
		loads++
		return []byte{0, 0, 1, 0}, nil
	}

	for i := 0; i < 3; i++ {
		if err := cue.Prepare("a.wav"); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
	}
	if len(ctx.Players()) != 1 {
		t.Errorf("expected 1 player, got %d", len(ctx.Players()))
	}

	if err := cue.Prepare("b.wav"); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := cue.Prepare("a.wav"); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	players := ctx.Players()
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	if !players[0].Closed() || !players[1].Closed() || players[2].Closed() {
		t.Error("expected only the current player to stay open")
	}
	if loads != 2 {
		t.Errorf("expected each resource loaded once, got %d loads", loads)
	}
}

func TestCuePrepareUnknown(t *testing.T) {
	cue := NewCue(NewMockContext(), 1)

	if err := cue.Prepare(BuiltinPrefix + "trumpet"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource, got %v", err)
	}
	// Playback calls without a prepared sound are ignored.
	cue.Start()
	cue.Pause()
	cue.Stop()
}

func TestCuePrepareOnClosedContext(t *testing.T) {
	ctx := NewMockContext()
	_ = ctx.Close()
	cue := NewCue(ctx, 1)

	if err := cue.Prepare(BuiltinPrefix + "click"); err == nil {
		t.Error("expected an error from a closed context")
	}
}

func TestCueClose(t *testing.T) {
	ctx := NewMockContext()
	cue := NewCue(ctx, 1)
	_ = cue.Prepare(BuiltinPrefix + "click")

	if err := cue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ctx.Players()[0].Closed() {
		t.Error("expected the player closed")
	}
	if err := cue.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
