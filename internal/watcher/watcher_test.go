package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherTriggersOnFileWrite(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(root, func() { calls.Add(1) })
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "1850_fic.txt"), []byte("1\ta\ta\tAT\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Error("expected onChange to fire after file write")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(root, func() { calls.Add(1) })
	w.debounce = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(root, "1850_fic.txt"), []byte("1\ta\ta\tAT\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("expected at least one trigger")
	}
	time.Sleep(300 * time.Millisecond)
	if calls.Load() > 2 {
		t.Errorf("burst of writes triggered %d rescans", calls.Load())
	}
}

func TestWatcherStopCancelsPending(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(root, func() { calls.Add(1) })
	w.debounce = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "1850_fic.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	time.Sleep(400 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("onChange fired %d times after Stop", calls.Load())
	}
}

func TestWatcherStartTwice(t *testing.T) {
	root := t.TempDir()
	w := NewWatcher(root, func() {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("first Start error: %v", err)
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		t.Errorf("second Start error: %v", err)
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), func() {})
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error for missing root")
	}
}
