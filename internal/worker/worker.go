// Package worker runs slow blocking calls off the main goroutine while a
// spinner is drawn on the terminal.
package worker

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spawn calls fn on a separate goroutine and returns its result. While fn
// runs, a spinner labelled with label is drawn on w if w is a terminal.
func Spawn[T any](ctx context.Context, w io.Writer, label string, fn func(context.Context) (T, error)) (T, error) {
	return spawn(ctx, w, label, isTerminal(w), interval, fn)
}

func spawn[T any](ctx context.Context, w io.Writer, label string, interactive bool, tick time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var result T
	done := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		v, err := fn(gctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})

	if interactive {
		g.Go(func() error {
			spin(gctx, w, label, tick, done)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func spin(ctx context.Context, w io.Writer, label string, tick time.Duration, done <-chan struct{}) {
	t := time.NewTicker(tick)
	defer t.Stop()
	// Clear the line so following output starts at column zero.
	defer fmt.Fprint(w, "\r\033[K")

	for i := 0; ; i++ {
		fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], label)
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
