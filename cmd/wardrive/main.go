// wardrive converts wireless survey logs into one CSV table.
//
// It reads KML/KMZ exports, WiGLE and Kismet CSV, Kismet NetXML and loosely
// structured text logs, detects the format of each file, and writes a table
// with the columns ssid, bssid, latitude, longitude, altitude, signal,
// channel, encryption, type and timestamp plus any extra fields found.
//
// Usage:
//
//	wardrive [-config file] <input> [output.csv]
//	wardrive [-config file] -folder <dir> [-merge] [-recursive] [-out <dir>]
//	wardrive [-config file] -serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/wardrive-core/migrations"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/config"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
	"github.com/nerrad567/wardrive-core/internal/survey"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// errUsage is returned when the command line names nothing to do.
var errUsage = errors.New("usage: wardrive [-config file] <input> [output.csv] | -folder <dir> | -serve")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options is the parsed command line.
type options struct {
	configPath string
	folder     string
	outDir     string
	merge      bool
	recursive  bool
	serve      bool
	input      string
	output     string
}

// parseArgs parses the command line. Usage output goes to stderr.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("wardrive", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default $WARDRIVE_CONFIG or "+defaultConfigPath+")")
	fs.StringVar(&opts.folder, "folder", "", "convert every supported file in this folder")
	fs.StringVar(&opts.outDir, "out", "", "folder mode output directory (default <folder>/converted)")
	fs.BoolVar(&opts.merge, "merge", false, "folder mode: write one merged table")
	fs.BoolVar(&opts.recursive, "recursive", false, "folder mode: include subfolders")
	fs.BoolVar(&opts.serve, "serve", false, "run the HTTP API and MQTT command listener")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	switch {
	case opts.serve && (opts.folder != "" || len(rest) > 0):
		return nil, fmt.Errorf("-serve takes no input: %w", errUsage)
	case opts.folder != "" && len(rest) > 0:
		return nil, fmt.Errorf("-folder takes no positional arguments: %w", errUsage)
	case len(rest) > 2:
		return nil, fmt.Errorf("too many arguments: %w", errUsage)
	case !opts.serve && opts.folder == "" && len(rest) == 0:
		return nil, errUsage
	}

	if len(rest) > 0 {
		opts.input = rest[0]
	}
	if len(rest) > 1 {
		opts.output = rest[1]
	}
	return opts, nil
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Debug("starting wardrive", "version", version, "commit", commit, "build_date", date)

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	switch {
	case opts.serve:
		return app.serve(ctx)
	case opts.folder != "":
		return app.convertFolder(ctx, stdout, opts.folder, survey.BatchOptions{
			OutputDir: firstNonEmpty(opts.outDir, cfg.Converter.OutputDir),
			Merge:     opts.merge || cfg.Converter.Merge,
			Recursive: opts.recursive || cfg.Converter.Recursive,
		})
	default:
		return app.convertFile(ctx, stdout, opts.input, opts.output)
	}
}

// loadConfig loads the configuration file. An explicit path (flag or
// WARDRIVE_CONFIG) must exist; the default path falls back to built-in
// defaults when absent.
func loadConfig(flagPath string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("WARDRIVE_CONFIG")
	}
	if path != "" {
		return config.Load(path)
	}

	if _, err := os.Stat(defaultConfigPath); errors.Is(err, os.ErrNotExist) {
		cfg := config.Defaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(defaultConfigPath)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
