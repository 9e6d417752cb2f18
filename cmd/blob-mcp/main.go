package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/ironsheep/blob-tools-mcp/internal/blob"
	"github.com/ironsheep/blob-tools-mcp/internal/config"
	"github.com/ironsheep/blob-tools-mcp/internal/raster"
	"github.com/ironsheep/blob-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// errUsage marks a command-line mistake; run prints usage and exits 2.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "blob-tools-mcp %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "serve":
		err = runServe(args, stderr)
	case "threshold":
		err = runThreshold(args, stdout, stderr)
	case "label":
		err = runLabel(args, stdout, stderr)
	case "attributes":
		err = runAttributes(args, stdout, stderr)
	case "analyze":
		err = runAnalyze(args, stdout, stderr)
	default:
		// Flags without a subcommand belong to serve.
		if len(cmd) > 0 && cmd[0] == '-' {
			err = runServe(append([]string{cmd}, args...), stderr)
			break
		}
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		printUsage(stderr)
		return 2
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "blob-tools-mcp - connected-component labeling and region measurement")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  blob-tools-mcp [serve] [--config file]")
	fmt.Fprintln(w, "      Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  blob-tools-mcp threshold <in> <level> <out>")
	fmt.Fprintln(w, "      Binarize a gray image: samples above level become 255")
	fmt.Fprintln(w, "  blob-tools-mcp label [--max-label n] [--color] <in> <out>")
	fmt.Fprintln(w, "      Label the 4-connected regions of a binary image")
	fmt.Fprintln(w, "  blob-tools-mcp attributes [--moments origin|central] [--segment] <labels> <table> <out>")
	fmt.Fprintln(w, "      Write the descriptor table and a copy of the label image with markers")
	fmt.Fprintln(w, "  blob-tools-mcp analyze [--threshold n] [--moments m] [--table f] [--markers f] [--labels f] <in>")
	fmt.Fprintln(w, "      Threshold, label and measure in one step; the table goes to stdout by default")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags come before the file arguments.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w, "  --config <file>  YAML configuration (all commands)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  BLOB_MCP_CONFIG=<file>       Configuration file when --config is not given")
	fmt.Fprintln(w, "  BLOB_MCP_LOG_LEVEL=debug     Override the configured log level")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Files ending in .pgm keep their full sample depth; other extensions are")
	fmt.Fprintln(w, "read and written as 8-bit images.")
}

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	logLevel   string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
}

// setup loads the configuration and installs the stderr logger.
// stdout is reserved for MCP traffic and command output.
func (c *common) setup(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg := config.DefaultConfig()
	if path := config.ResolvePath(c.configPath); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	levelName := cfg.Log.Level
	if env := os.Getenv("BLOB_MCP_LOG_LEVEL"); env != "" {
		levelName = env
	}
	if c.logLevel != "" {
		levelName = c.logLevel
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	blob.SetLogger(logger)
	return cfg, logger, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != positional {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", errUsage, fs.Name(), positional, fs.NArg())
	}
	return fs.Args(), nil
}

func runServe(args []string, stderr io.Writer) error {
	var c common
	fs := newFlagSet("serve", stderr)
	c.register(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	cfg, logger, err := c.setup(stderr)
	if err != nil {
		return err
	}

	logger.Debug("starting server", "version", Version, "built", BuildTime, "commit", GitCommit)
	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
	return srv.Run()
}

func runThreshold(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("threshold", stderr)
	c.register(fs)
	pos, err := parse(fs, args, 3)
	if err != nil {
		return err
	}
	if _, _, err := c.setup(stderr); err != nil {
		return err
	}

	level, err := strconv.Atoi(pos[1])
	if err != nil {
		return fmt.Errorf("%w: threshold level %q is not an integer", errUsage, pos[1])
	}
	src, err := raster.Load(pos[0])
	if err != nil {
		return err
	}
	bin, err := raster.Threshold(src, level)
	if err != nil {
		return err
	}
	if err := raster.Save(pos[2], bin); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Binary image saved as: %s (%d foreground pixels)\n", pos[2], bin.CountNonZero())
	return nil
}

func runLabel(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("label", stderr)
	c.register(fs)
	maxLabel := fs.Int("max-label", 0, "label limit (default from config, 255)")
	colorize := fs.Bool("color", false, "write a color-coded PNG instead of label values")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	cfg, _, err := c.setup(stderr)
	if err != nil {
		return err
	}
	if *maxLabel == 0 {
		*maxLabel = cfg.Labeling.MaxLabel
	}

	bin, err := raster.Load(pos[0])
	if err != nil {
		return err
	}
	labels, err := blob.Label(bin, blob.WithMaxLabel(*maxLabel))
	if err != nil {
		return err
	}

	if *colorize {
		if err := raster.SaveImage(pos[1], blob.Colorize(labels)); err != nil {
			return err
		}
	} else if err := raster.Save(pos[1], labels); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Labeled image saved as: %s (%d regions)\n", pos[1], len(blob.Components(labels)))
	return nil
}

func runAttributes(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("attributes", stderr)
	c.register(fs)
	moments := fs.String("moments", "", "origin or central (default from config)")
	segment := fs.Bool("segment", false, "draw whole orientation segments")
	pos, err := parse(fs, args, 3)
	if err != nil {
		return err
	}
	cfg, _, err := c.setup(stderr)
	if err != nil {
		return err
	}
	st := cfg.Settings()
	if *moments != "" {
		if st.Moments, err = blob.ParseMoments(*moments); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	st.Segment = st.Segment || *segment

	labels, err := raster.Load(pos[0])
	if err != nil {
		return err
	}
	ds := blob.ExtractAttributes(labels, blob.WithMoments(st.Moments))
	if err := writeTableFile(pos[1], ds); err != nil {
		return err
	}

	canvas := labels.Clone()
	if err := blob.Render(ds, canvas, st.RenderOptions()...); err != nil {
		return err
	}
	if err := raster.Save(pos[2], canvas); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Object descriptions saved as: %s\n", pos[1])
	fmt.Fprintf(stdout, "Output image saved as: %s\n", pos[2])
	return nil
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("analyze", stderr)
	c.register(fs)
	level := fs.Int("threshold", -1, "threshold level (default from config, 128)")
	moments := fs.String("moments", "", "origin or central (default from config)")
	tablePath := fs.String("table", "", "write the descriptor table here instead of stdout")
	markersPath := fs.String("markers", "", "write the gray image with orientation markers here")
	labelsPath := fs.String("labels", "", "write an annotated color label image here")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	cfg, _, err := c.setup(stderr)
	if err != nil {
		return err
	}
	st := cfg.Settings()
	if *moments != "" {
		if st.Moments, err = blob.ParseMoments(*moments); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	if *level < 0 {
		*level = cfg.Threshold.Level
	}

	src, err := raster.Load(pos[0])
	if err != nil {
		return err
	}
	bin, err := raster.Threshold(src, *level)
	if err != nil {
		return err
	}
	res, err := blob.Analyze(bin, st)
	if err != nil {
		return err
	}

	if *tablePath != "" {
		if err := writeTableFile(*tablePath, res.Descriptors); err != nil {
			return err
		}
	} else if err := blob.WriteTable(stdout, res.Descriptors); err != nil {
		return err
	}

	if *markersPath != "" {
		canvas := src.Clone()
		if err := blob.Render(res.Descriptors, canvas, st.RenderOptions()...); err != nil {
			return err
		}
		if err := raster.Save(*markersPath, canvas); err != nil {
			return err
		}
	}
	if *labelsPath != "" {
		img := blob.Colorize(res.Labels)
		blob.Annotate(img, res.Descriptors)
		if err := raster.SaveImage(*labelsPath, img); err != nil {
			return err
		}
	}
	return nil
}

func writeTableFile(path string, ds []blob.Descriptor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := blob.WriteTable(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
