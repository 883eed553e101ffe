package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startFollower(t *testing.T, path string) *Follower {
	t.Helper()
	f, err := NewFollower(path, 30*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFollower: %v", err)
	}
	go f.Run()
	t.Cleanup(func() { f.Close() })
	return f
}

func waitChange(t *testing.T, f *Follower, want Change) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-f.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s", want)
			}
			if ev.Change == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event observed", want)
		}
	}
}

func TestFollowerSeesAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output_log_live.txt")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := startFollower(t, path)

	h, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.WriteString("more\n"); err != nil {
		t.Fatal(err)
	}
	h.Close()

	ev := waitChange(t, f, Appended)
	if ev.Path != f.Path() {
		t.Errorf("path = %s, want %s", ev.Path, f.Path())
	}
}

func TestFollowerSeesTruncate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output_log_live.txt")
	if err := os.WriteFile(path, []byte("a long first generation\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := startFollower(t, path)

	if err := os.Truncate(path, 2); err != nil {
		t.Fatal(err)
	}

	waitChange(t, f, Replaced)
}

func TestFollowerSeesNewerLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output_log_old.txt")
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := startFollower(t, path)

	newer := filepath.Join(dir, "output_log_new.txt")
	if err := os.WriteFile(newer, []byte("y\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := waitChange(t, f, NewerFile)
	if filepath.Base(ev.Path) != "output_log_new.txt" {
		t.Errorf("path = %s", ev.Path)
	}
}

func TestFollowerCloseEndsEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output_log_live.txt")
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFollower(path, 30*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	go f.Run()

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for range f.Events() {
	}
}
