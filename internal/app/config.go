package app

import (
	"github.com/hyperifyio/evidencepdf/internal/render"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs are converted in order.
	Inputs []string
	// OutDir, when set, receives every PDF instead of the input's directory.
	OutDir string

	// Qualifying container; empty means <section class="card">.
	ContainerTag   string
	ContainerClass string

	// Style holds overrides on top of render.DefaultStyle. Zero fields keep
	// the default.
	Style render.Style

	// KeepGoing continues with the remaining inputs after a render failure.
	// The run still fails at the end.
	KeepGoing bool
	// Reproducible pins each PDF's creation date to its input's mtime.
	Reproducible bool

	Verbose bool

	// Optional JSON log file, rotated by size.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// EffectiveStyle returns the default style with the configured overrides.
func (c Config) EffectiveStyle() render.Style {
	return render.DefaultStyle().Merge(c.Style)
}
