package watches

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reusee/dscope"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blink.wig")
	if err := os.WriteFile(path, []byte("PROC main() ENDPROC"), 0644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "other.wig")

	dscope.New(new(Module)).Call(func(
		watch Watch,
	) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		changed := make(chan string, 16)
		done := make(chan error, 1)
		go func() {
			done <- watch(ctx, []string{path}, func(_ context.Context, p string) error {
				changed <- p
				return nil
			})
		}()

		// wait for the watcher to be installed
		time.Sleep(100 * time.Millisecond)

		if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		for range 3 {
			if err := os.WriteFile(path, []byte("PROC main() ENDPROC\n"), 0644); err != nil {
				t.Fatal(err)
			}
		}

		select {
		case p := <-changed:
			if p != path {
				t.Fatalf("got %s", p)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("no change reported")
		}

		// burst is debounced into one call
		select {
		case p := <-changed:
			t.Fatalf("unexpected change %s", p)
		case <-time.After(3 * defaultDebounce):
		}

		cancel()
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	})
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "a.wig"))
	if err == nil {
		t.Fatal("should fail")
	}
}

func TestWatcherCloseWithFullBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blink.wig")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}

	// nobody reads events, so the buffer fills and the loop blocks on send
	for i := range 4 * cap(watcher.events) {
		if err := os.WriteFile(path, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	deadline := time.After(5 * time.Second)
	for len(watcher.events) < cap(watcher.events) {
		select {
		case <-deadline:
			t.Fatalf("got %d events", len(watcher.events))
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := watcher.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-watcher.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
	// second close is harmless
	watcher.Close()
}
