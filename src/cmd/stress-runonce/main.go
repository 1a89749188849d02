package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"snip-pin/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

// tally counts outcomes. A resident serves one overlay at a time, so with
// n > 1 all but one client are expected to land in busy.
type tally struct {
	ok, busy, fallback, failed atomic.Int32
}

func (t *tally) record(delegated bool, err error) {
	switch {
	case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
		t.busy.Add(1)
	case err != nil && delegated:
		t.failed.Add(1)
	case !delegated:
		t.fallback.Add(1)
	default:
		t.ok.Add(1)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Fire concurrent run-once requests at a resident snip-pin",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "std" && opts.mode != "save" {
				return fmt.Errorf("unknown mode %q: want std or save", opts.mode)
			}
			return runWithOptions(*opts, singleinstance.DetectResidentPort, singleinstance.NewClient, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 10, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "std", "std|save: PNG on stdout or saved file path")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 30*time.Second, "per-client timeout")

	return cmd
}

// runWithOptions refuses to start when no resident answers, since every client
// would just fall back.
func runWithOptions(opts stressOptions, detect func(context.Context) (int, bool), newClient func() singleinstance.Client, out io.Writer) error {
	probeCtx, cancel := context.WithTimeout(context.Background(), opts.deadline)
	port, ok := detect(probeCtx)
	cancel()
	if !ok {
		start, end := singleinstance.PortRange()
		return fmt.Errorf("no resident listening on 127.0.0.1:%d-%d", start, end)
	}
	fmt.Fprintf(out, "resident on port %d\n", port)

	var wg sync.WaitGroup
	var t tally

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := newClient().TryRunOnce(ctx, opts.mode == "std")
			t.record(delegated, err)
		}()
	}
	wg.Wait()
	fmt.Fprintf(out, "launched=%d ok=%d busy=%d fallback=%d err=%d elapsed=%s\n",
		opts.n, t.ok.Load(), t.busy.Load(), t.fallback.Load(), t.failed.Load(), time.Since(start).Round(time.Millisecond))
	return nil
}
