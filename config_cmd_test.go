package main

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/typedtext/typewriter"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigMatchesDefaults(t *testing.T) {
	content, err := defaultConfig()
	if err != nil {
		t.Fatalf("defaultConfig: %v", err)
	}
	if !strings.Contains(content, "# delay between characters\ntyping_delay: 175ms\n") {
		t.Errorf("expected a commented typing_delay entry, got:\n%s", content)
	}

	var values map[string]any
	if err := yaml.Unmarshal([]byte(content), &values); err != nil {
		t.Fatalf("default config is not valid yaml: %v", err)
	}

	opts := make(map[string]any)
	for _, k := range typingKeys {
		v, ok := values[k]
		if !ok {
			t.Fatalf("default config is missing %q", k)
		}
		opts[k] = v
	}
	got, err := typewriter.DefaultConfig().ApplyOptions(opts)
	if err != nil {
		t.Fatalf("ApplyOptions: %v", err)
	}

	want := typewriter.DefaultConfig()
	want.PlayAudioCue = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
