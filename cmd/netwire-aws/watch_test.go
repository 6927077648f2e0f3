package main

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd()

	if cmd.Use != "watch [topology-file]" {
		t.Errorf("Use = %q, want 'watch [topology-file]'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	// Check flags exist
	if cmd.Flags().Lookup("lint-only") == nil {
		t.Error("missing --lint-only flag")
	}

	if cmd.Flags().Lookup("debounce") == nil {
		t.Error("missing --debounce flag")
	}
}

func TestDebounceDefault(t *testing.T) {
	cmd := newWatchCmd()

	flag := cmd.Flags().Lookup("debounce")
	if flag == nil {
		t.Fatal("missing --debounce flag")
	}

	if flag.DefValue != "500ms" {
		t.Errorf("debounce default = %q, want '500ms'", flag.DefValue)
	}
}

func TestWatchedFileEvent(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "topology.yaml")

	cases := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to watched file", fsnotify.Event{Name: watched, Op: fsnotify.Write}, true},
		{"create of watched file", fsnotify.Event{Name: watched, Op: fsnotify.Create}, true},
		{"write to sibling", fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, false},
		{"chmod of watched file", fsnotify.Event{Name: watched, Op: fsnotify.Chmod}, false},
	}

	for _, tc := range cases {
		if got := watchedFileEvent(tc.event, watched); got != tc.want {
			t.Errorf("%s: watchedFileEvent = %v, want %v", tc.name, got, tc.want)
		}
	}
}
