package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"snip-pin/src/config"
	"snip-pin/src/pixel"
	"snip-pin/src/runtimeinit"
)

type cliOptions struct {
	area       string
	outPath    string
	jsonOutput bool
	verbose    bool
	envPath    string
}

// capturer is the part of screenshot.Engine the tool needs.
type capturer interface {
	CaptureFullscreen() (*pixel.Buffer, error)
	CaptureArea(r pixel.Rect) (*pixel.Buffer, error)
}

// CaptureResult is the --json output.
type CaptureResult struct {
	Path     string  `json:"path"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Bytes    int     `json:"bytes"`
	Area     string  `json:"area,omitempty"`
	Duration float64 `json:"duration_seconds"`
}

func main() {
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
		args = []string{"snip-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snip-tool",
		Short:         "Capture the screen or an area of it to PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.area, "area", "", "Capture x,y,w,h in desktop coordinates instead of the full screen")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Output PNG path (use '-' for stdout); defaults to fullscreen.png or area.png")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to a .env file (highest precedence)")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting snip tool\n")
	}

	cfg, engine, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{EnvPathOverride: opts.envPath},
	})
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded: backend=%s forceBGRA=%v\n", cfg.CaptureBackend, cfg.ForceBGRA)
	}

	return captureToFile(engine, opts, os.Stdout)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"area", "out", "json", "verbose", "env"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}

// parseArea reads "x,y,w,h". Width and height must be positive.
func parseArea(s string) (pixel.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return pixel.Rect{}, fmt.Errorf("invalid area %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return pixel.Rect{}, fmt.Errorf("invalid area %q: %w", s, err)
		}
		v[i] = n
	}
	r := pixel.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() {
		return pixel.Rect{}, fmt.Errorf("invalid area %q: width and height must be positive", s)
	}
	return r, nil
}

func captureToFile(c capturer, opts cliOptions, stdout io.Writer) error {
	start := time.Now()

	var (
		buf  *pixel.Buffer
		err  error
		path = opts.outPath
	)
	if opts.area != "" {
		r, perr := parseArea(opts.area)
		if perr != nil {
			return perr
		}
		if path == "" {
			path = "area.png"
		}
		buf, err = c.CaptureArea(r)
	} else {
		if path == "" {
			path = "fullscreen.png"
		}
		buf, err = c.CaptureFullscreen()
	}
	if err != nil {
		return err
	}
	if buf.Empty() {
		return fmt.Errorf("area %s lies outside the display", opts.area)
	}

	data, err := pixel.EncodePNG(buf)
	if err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %dx%d capture to %s", buf.Width, buf.Height, path)

	return outputResult(stdout, CaptureResult{
		Path:     path,
		Width:    buf.Width,
		Height:   buf.Height,
		Bytes:    len(data),
		Area:     opts.area,
		Duration: time.Since(start).Seconds(),
	}, opts.jsonOutput)
}

func outputResult(w io.Writer, res CaptureResult, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprintln(w, res.Path)
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res)
}
