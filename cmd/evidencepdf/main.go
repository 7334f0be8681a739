package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/hyperifyio/evidencepdf/internal/app"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

type cliFlags struct {
	outDir         string
	config         string
	verbose        bool
	keepGoing      bool
	reproducible   bool
	logFile        string
	pageSize       string
	containerTag   string
	containerClass string
	version        bool
}

func newFlagSet(stderr io.Writer, f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("evidencepdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "write PDFs into this directory instead of next to each input")
	fs.StringVarP(&f.config, "config", "c", "", "YAML or JSON config file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.BoolVar(&f.keepGoing, "keep-going", false, "continue with the remaining inputs after a render failure")
	fs.BoolVar(&f.reproducible, "reproducible", false, "use each input's modification time as the PDF creation date")
	fs.StringVar(&f.logFile, "log-file", "", "also write JSON logs to this file (rotated)")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: letter, legal, a3, a4, a5 (default letter)")
	fs.StringVar(&f.containerTag, "container-tag", "", "tag of the content container (default section)")
	fs.StringVar(&f.containerClass, "container-class", "", "class token of the content container (default card)")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: evidencepdf [flags] FILE.html...")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	return fs
}

// realMain runs the CLI and returns the process exit code.
func realMain(args []string, stdout, stderr io.Writer) int {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339})

	var f cliFlags
	fs := newFlagSet(stderr, &f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}
	if f.version {
		fmt.Fprintln(stdout, app.VersionString())
		return ExitSuccess
	}

	cfg, err := buildConfig(f, fs.Args())
	if err != nil {
		log.Error().Err(err).Msg("configuration failed")
		return exitCodeFor(err)
	}

	closer := app.ConfigureLogging(stderr, cfg)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, stdout); err != nil {
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, app.ErrNoInputs) {
			fs.Usage()
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// buildConfig turns parsed flags into an app.Config, overlaying the config
// file for anything the flags left unset.
func buildConfig(f cliFlags, inputs []string) (app.Config, error) {
	cfg := app.Config{
		Inputs:         inputs,
		OutDir:         f.outDir,
		ContainerTag:   f.containerTag,
		ContainerClass: f.containerClass,
		KeepGoing:      f.keepGoing,
		Reproducible:   f.reproducible,
		Verbose:        f.verbose,
		LogFile:        f.logFile,
	}
	cfg.Style.PageSize = f.pageSize
	if f.config != "" {
		fc, err := app.LoadConfigFile(f.config)
		if err != nil {
			return cfg, fmt.Errorf("%w: config %s: %w", errUsage, f.config, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config, stdout io.Writer) error {
	a, err := app.New(cfg, stdout)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}
