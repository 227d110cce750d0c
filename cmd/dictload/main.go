// Command dictload converts a dictionary file into a sqlite database with one
// row per headword.
//
// Usage:
//
//	dictload [flags] <input> [output]
//
// The output defaults to the input path with its extension replaced by .db.
// Settings come from flags, then DICTLOAD_* environment variables, then the
// optional -config YAML file.
//
// Exit codes: 0 = success (individual records may have been skipped),
// 1 = setup, commit or worker failure, or interrupted run, 2 = bad usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/japaniel/dictload/pkg/app"
	"github.com/japaniel/dictload/pkg/config"
	"github.com/japaniel/dictload/pkg/dictionary"
	"github.com/japaniel/dictload/pkg/ingest"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dictload", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: dictload [flags] <input> [output]\n\n")
		fmt.Fprintf(fs.Output(), "Arguments:\n")
		fmt.Fprintf(fs.Output(), "  input   dictionary file (.json or .txt/.tab/.tsv, optionally .gz/.zst/.lz4/.sz)\n")
		fmt.Fprintf(fs.Output(), "  output  sqlite database to write (default: <input>.db)\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}

	workersFlag := fs.Int("workers", 0, "number of extraction workers (default: one per CPU)")
	var stripFlag bool
	fs.BoolVar(&stripFlag, "remove-img-a", false, "remove <img> and <a> tags from definitions")
	fs.BoolVar(&stripFlag, "r", false, "shorthand for -remove-img-a")
	formatFlag := fs.String("format", "", "dictionary format: json or tab (default: detect from file name)")
	configFlag := fs.String("config", "", "path to YAML config file")
	progressFlag := fs.Int("progress-every", 0, "records between progress reports (default 3000)")
	fingerprintFlag := fs.Bool("fingerprint", false, "print a content fingerprint of the table after loading")
	logLevelFlag := fs.String("log-level", "", "debug, info, warn or error (default debug)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	// CLI flags override config.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Load.Workers = *workersFlag
		case "remove-img-a", "r":
			cfg.Load.StripMarkup = stripFlag
		case "format":
			cfg.Load.Format = *formatFlag
		case "progress-every":
			cfg.Load.ProgressEvery = *progressFlag
		case "log-level":
			cfg.Log.Level = *logLevelFlag
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid settings: %v\n", err)
		return 2
	}

	logger := app.NewLogger(stderr, cfg.Log)

	input := fs.Arg(0)
	output := fs.Arg(1)
	if output == "" {
		output = defaultOutputPath(input)
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		logger.Error("output path is the input file", slog.String("path", input))
		return 1
	}

	format, _ := dictionary.ParseFormat(cfg.Load.Format)
	parse, err := dictionary.ParserFor(format, input)
	if err != nil {
		logger.Error("choose dictionary format", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("loading dictionary file", slog.String("path", input))
	data, err := dictionary.ReadSource(input)
	if err != nil {
		logger.Error("load dictionary", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("parsing dictionary file", slog.Int("bytes", len(data)))
	dict, err := parse(data)
	if err != nil {
		logger.Error("parse dictionary", slog.String("error", err.Error()))
		return 1
	}

	loader := ingest.NewLoader(cfg.Load.Workers)
	loader.StripMarkup = cfg.Load.StripMarkup
	loader.ProgressEvery = cfg.Load.ProgressEvery
	loader.BufferSize = cfg.Load.BufferSize
	loader.Fingerprint = *fingerprintFlag
	loader.Logger = logger

	sum, err := loader.Convert(ctx, dict, output)
	if err != nil {
		logger.Error("load failed", slog.String("path", output), slog.String("error", err.Error()))
		return 1
	}
	if sum.Skipped > 0 || sum.ResolveFailed > 0 {
		logger.Warn("some records were skipped",
			slog.Int("insert_failed", sum.Skipped), slog.Int("resolve_failed", sum.ResolveFailed))
	}
	if sum.Fingerprint != nil {
		fmt.Fprintln(stdout, sum.Fingerprint)
	}
	return 0
}

// defaultOutputPath replaces the extension of input with .db, dropping a
// compression suffix first.
func defaultOutputPath(input string) string {
	p := dictionary.TrimCompressionExt(input)
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".db"
}
