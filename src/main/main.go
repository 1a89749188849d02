package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"

	"snip-pin/src/config"
	"snip-pin/src/eventloop"
	"snip-pin/src/hotkey"
	"snip-pin/src/logutil"
	"snip-pin/src/platform"
	"snip-pin/src/runtimeinit"
	"snip-pin/src/screenshot"
	"snip-pin/src/session"
	"snip-pin/src/singleinstance"
	"snip-pin/src/tray"
	"snip-pin/src/winutil"
)

type mainOptions struct {
	runOnce bool
	stdout  bool
	envPath string
	saveDir string
	hotkey  string
}

type runOnceClient interface {
	TryRunOnce(ctx context.Context, outputToStdout bool) (bool, []byte, error)
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	winutil.EnableDPIAwareness()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"snip-pin"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snip-pin",
		Short:         "Capture screen regions and pin them on top",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runOnce {
				return runOnce(*opts)
			}
			return runResident(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Take one snip, save it, and exit")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "With --run-once, write the PNG to stdout instead of a file")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to a .env file (highest precedence)")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "Directory for saved snips")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global capture hotkey, e.g. F4 or Ctrl+Shift+S")
	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-run-once) to the GNU form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	long := []string{"run-once", "stdout", "env", "save-dir", "hotkey"}

	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func bootstrap(opts mainOptions) (*config.Config, *screenshot.Engine, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvPathOverride: opts.envPath,
			SaveDirOverride: opts.saveDir,
			HotkeyOverride:  opts.hotkey,
		},
		SetupLogging: logutil.Setup,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runResident(opts mainOptions) error {
	cfg, engine, err := bootstrap(opts)
	if err != nil {
		return err
	}

	lock, err := singleinstance.Acquire()
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		log.Printf("Resident already running, exiting")
		tray.ShowMessage("Snip Pin", "Snip Pin is already running.")
		return nil
	}
	if err != nil {
		return err
	}
	defer lock.Release()

	reg, err := hotkey.Register(cfg.Hotkey)
	if err != nil {
		log.Printf("Hotkey unavailable, use the tray menu to capture: %v", err)
	} else {
		defer reg.Close()
	}

	log.Printf("Snip Pin initialized")
	start, end := singleinstance.PortRange()
	log.Printf("Run-once delegation ports: %d-%d", start, end)
	for i, d := range screenshot.Displays() {
		log.Printf("MONITOR: display %d at %v", i, d)
	}

	var hotkeyCh <-chan struct{}
	if reg != nil {
		hotkeyCh = reg.C()
	}
	tooltip := fmt.Sprintf("Snip Pin - Press %s to capture", cfg.Hotkey)

	var runErr error
	driver.Main(func(s screen.Screen) {
		plat := platform.New(s)
		defer plat.Close()

		loop, err := eventloop.New(eventloop.Config{
			Capturer:  engine,
			Platform:  plat,
			Target:    session.FileTarget{Dir: cfg.SaveDir},
			DimFactor: cfg.DimFactor,
			PinBorder: cfg.PinBorder,
			Hotkey:    hotkeyCh,
			Server:    singleinstance.NewServer(),
		})
		if err != nil {
			runErr = err
			return
		}
		loop.SetDefaultTooltip(tooltip)

		ctx, cancel := signalContext()
		defer cancel()

		trayIcon := tray.New(tray.Config{
			Title:     "Snip Pin",
			Tooltip:   tooltip,
			OnCapture: loop.Trigger,
			OnExit:    cancel,
		})
		go trayIcon.Run()
		defer trayIcon.Destroy()

		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
		log.Printf("event loop stopped")
	})
	return runErr
}

func runOnce(opts mainOptions) error {
	cfg, engine, err := bootstrap(opts)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	return handleRunOnceWithDelegation(ctx, singleinstance.NewClient(), opts.stdout, os.Stdout, func() error {
		return runStandalone(cfg, engine, opts.stdout)
	})
}

// handleRunOnceWithDelegation prefers a running resident. The standalone
// fallback runs only when no resident answered; a resident that reports an
// error (for example a cancelled selection) ends the run.
func handleRunOnceWithDelegation(ctx context.Context, client runOnceClient, stdout bool, out io.Writer, fallback func() error) error {
	delegated, payload, err := client.TryRunOnce(ctx, stdout)
	if !delegated {
		if err != nil {
			log.Printf("Delegation error: %v; falling back to standalone", err)
		} else {
			log.Printf("No resident detected (not delegated), running standalone")
		}
		return fallback()
	}
	if err != nil {
		return err
	}
	log.Printf("Delegated to resident")
	if stdout {
		_, err = out.Write(payload)
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", payload)
	return err
}

func runStandalone(cfg *config.Config, engine *screenshot.Engine, stdout bool) error {
	var target session.ResultTarget = session.FileTarget{Dir: cfg.SaveDir}
	if stdout {
		target = session.StdoutTarget{Writer: os.Stdout}
	}

	var runErr error
	driver.Main(func(s screen.Screen) {
		plat := platform.New(s)
		defer plat.Close()

		loop, err := eventloop.New(eventloop.Config{
			Capturer:         engine,
			Platform:         plat,
			Target:           target,
			DimFactor:        cfg.DimFactor,
			PinBorder:        cfg.PinBorder,
			ExitAfterSession: true,
		})
		if err != nil {
			runErr = err
			return
		}
		ctx, cancel := signalContext()
		defer cancel()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	})
	return runErr
}
