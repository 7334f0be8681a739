package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/evidencepdf/internal/extract"
	"github.com/hyperifyio/evidencepdf/internal/render"
)

var (
	// ErrMissingInput aborts a run before any conversion starts.
	ErrMissingInput = errors.New("input file not found")
	// ErrRender wraps every failure to produce a PDF for one input.
	ErrRender = errors.New("render failed")
)

// Result describes one converted input.
type Result struct {
	Input  string
	Output string
	Title  string
	Blocks int
	Stats  render.Stats
}

// App converts a batch of evidence pages to PDF.
type App struct {
	cfg       Config
	style     render.Style
	extractor extract.Extractor
	stdout    io.Writer
}

// New validates cfg and returns an App that reports each written file on
// stdout.
func New(cfg Config, stdout io.Writer) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if stdout == nil {
		stdout = io.Discard
	}
	return &App{
		cfg:   cfg,
		style: cfg.EffectiveStyle(),
		extractor: extract.CardExtractor{
			ContainerTag:   cfg.ContainerTag,
			ContainerClass: cfg.ContainerClass,
		},
		stdout: stdout,
	}, nil
}

// Run converts every input in order. All inputs are checked for existence
// first; a missing one fails the run before anything is written. A render
// failure stops the batch unless KeepGoing is set, in which case the run
// fails after the remaining inputs are done.
func (a *App) Run(ctx context.Context) error {
	if err := preflight(a.cfg.Inputs); err != nil {
		return err
	}
	failed := 0
	for _, in := range a.cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := a.Convert(in)
		if err != nil {
			if !a.cfg.KeepGoing {
				return err
			}
			log.Error().Err(err).Str("input", in).Msg("conversion failed; continuing")
			failed++
			continue
		}
		fmt.Fprintf(a.stdout, "Wrote %s\n", res.Output)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d inputs", ErrRender, failed, len(a.cfg.Inputs))
	}
	return nil
}

func preflight(inputs []string) error {
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrMissingInput, in)
			}
			return fmt.Errorf("stat input: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrMissingInput, in)
		}
	}
	return nil
}

// Convert extracts one input and renders it to its output path.
func (a *App) Convert(input string) (Result, error) {
	res := Result{Input: input, Output: deriveOutputPath(input, a.cfg.OutDir)}

	start := time.Now()
	raw, err := os.ReadFile(input)
	if err != nil {
		return res, fmt.Errorf("read input: %w", err)
	}
	doc := a.extractor.Extract(raw, stem(input))
	res.Title = doc.Title
	res.Blocks = len(doc.Blocks)
	log.Debug().
		Str("stage", "extract").
		Str("input", input).
		Str("title", doc.Title).
		Int("blocks", len(doc.Blocks)).
		Int64("elapsed", time.Since(start).Milliseconds()).
		Msg("extracted blocks")
	if len(doc.Blocks) == 0 {
		log.Warn().Str("input", input).Msg("no content blocks found; writing title page only")
	}

	start = time.Now()
	opts := []render.Option{render.WithCreator("evidencepdf " + BuildVersion)}
	if a.cfg.Reproducible {
		if info, err := os.Stat(input); err == nil {
			opts = append(opts, render.WithCreationDate(info.ModTime().UTC()))
		}
	}
	stats, err := render.New(a.style, opts...).Render(doc, res.Output)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrRender, input, err)
	}
	res.Stats = stats
	log.Info().
		Str("stage", "render").
		Str("input", input).
		Str("out", res.Output).
		Int("pages", stats.Pages).
		Int("tables", stats.Tables).
		Int64("elapsed", time.Since(start).Milliseconds()).
		Msg("wrote pdf")
	return res, nil
}
