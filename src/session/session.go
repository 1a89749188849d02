package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"snip-pin/src/pixel"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrEmptySnip          = errors.New("snip has no image data")
)

// Snip is a confirmed selection, already encoded as PNG.
type Snip struct {
	PNG   []byte
	Rect  pixel.Rect
	Taken time.Time
}

// ResultTarget receives the outcome of one overlay session.
// OnSuccess returns a human-readable location for the delivered snip.
type ResultTarget interface {
	OnSuccess(snip Snip) (string, error)
	OnFailure(err error) error
}

type Options struct {
	Deadline time.Duration
	Target   ResultTarget
}

type Result struct {
	Location string
}

// Deliver hands snip to the target, honouring ctx and the optional deadline.
func Deliver(ctx context.Context, snip Snip, opts Options) (Result, error) {
	if opts.Target == nil {
		return Result{}, errors.New("Target is required")
	}
	if len(snip.PNG) == 0 {
		_ = opts.Target.OnFailure(ErrEmptySnip)
		return Result{}, ErrEmptySnip
	}
	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	resCh := make(chan struct {
		loc string
		err error
	}, 1)
	go func() {
		loc, err := opts.Target.OnSuccess(snip)
		resCh <- struct {
			loc string
			err error
		}{loc, err}
	}()

	select {
	case r := <-resCh:
		if r.err != nil {
			_ = opts.Target.OnFailure(r.err)
			return Result{}, r.err
		}
		return Result{Location: r.loc}, nil
	case <-ctx.Done():
		_ = opts.Target.OnFailure(ctx.Err())
		return Result{}, ctx.Err()
	}
}

// FileTarget writes each snip as snip_<unix>.png into Dir.
type FileTarget struct {
	Dir string
}

func (t FileTarget) OnSuccess(snip Snip) (string, error) {
	dir := t.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}
	taken := snip.Taken
	if taken.IsZero() {
		taken = time.Now()
	}
	path := uniquePath(dir, fmt.Sprintf("snip_%d", taken.Unix()))
	if err := os.WriteFile(path, snip.PNG, 0o644); err != nil {
		return "", fmt.Errorf("write snip: %w", err)
	}
	log.Printf("Session: saved %s (%s, %d bytes)", path, snip.Rect, len(snip.PNG))
	return path, nil
}

func (t FileTarget) OnFailure(err error) error {
	log.Printf("Session: snip not saved: %v", err)
	return nil
}

// uniquePath avoids overwriting a snip taken within the same second.
func uniquePath(dir, base string) string {
	path := filepath.Join(dir, base+".png")
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.png", base, i))
	}
}

// StdoutTarget writes the raw PNG bytes.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(snip Snip) (string, error) {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	if _, err := w.Write(snip.PNG); err != nil {
		return "", err
	}
	return "stdout", nil
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}
