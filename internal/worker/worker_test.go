package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer signals on the first write so tests can wait for the spinner
// without sleeping.
type lockedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	once    sync.Once
	written chan struct{}
}

func newLockedBuffer() *lockedBuffer {
	return &lockedBuffer{written: make(chan struct{})}
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.once.Do(func() { close(b.written) })
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpawn_ReturnsResult(t *testing.T) {
	var out bytes.Buffer
	got, err := Spawn(context.Background(), &out, "Connecting to database", func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Spawn() = %d, want 42", got)
	}
	if out.Len() != 0 {
		t.Errorf("spinner drawn on non-terminal writer: %q", out.String())
	}
}

func TestSpawn_PropagatesError(t *testing.T) {
	wantErr := errors.New("migration failed")
	got, err := Spawn(context.Background(), &bytes.Buffer{}, "Connecting", func(context.Context) (*int, error) {
		v := 1
		return &v, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Spawn() error = %v, want %v", err, wantErr)
	}
	if got != nil {
		t.Errorf("Spawn() = %v, want zero value on error", got)
	}
}

func TestSpawn_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Spawn(ctx, &bytes.Buffer{}, "Uploading", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Spawn() error = %v, want %v", err, context.Canceled)
	}
}

func TestSpawn_DrawsSpinnerWhenInteractive(t *testing.T) {
	out := newLockedBuffer()

	got, err := spawn(context.Background(), out, "Connecting to database", true, time.Millisecond, func(context.Context) (string, error) {
		select {
		case <-out.written:
		case <-time.After(5 * time.Second):
			return "", errors.New("spinner never drew")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("spawn() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("spawn() = %q, want ok", got)
	}

	s := out.String()
	if !strings.Contains(s, frames[0]+" Connecting to database") {
		t.Errorf("output %q does not contain the labelled spinner", s)
	}
	if !strings.HasSuffix(s, "\r\033[K") {
		t.Errorf("output %q does not end by clearing the line", s)
	}
}
