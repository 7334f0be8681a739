package main

import (
	"errors"
	"os"

	"github.com/hyperifyio/evidencepdf/internal/app"
	"github.com/hyperifyio/evidencepdf/internal/render"
)

// Exit codes for the evidencepdf CLI.
const (
	ExitSuccess = 0 // All inputs converted
	ExitGeneral = 1 // Render failure or unexpected error
	ExitUsage   = 2 // Invalid flags, config, or style
	ExitIO      = 3 // Missing input, permission denied
)

// errUsage marks command-line and config-file problems.
var errUsage = errors.New("usage")

// exitCodeFor maps an error from realMain's pipeline to an exit code. Wrapped
// errors are matched with errors.Is, so the order of checks decides ties.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, app.ErrMissingInput) {
		return ExitIO
	}

	if errors.Is(err, errUsage) ||
		errors.Is(err, app.ErrNoInputs) ||
		errors.Is(err, app.ErrConfigParse) ||
		errors.Is(err, app.ErrInvalidConfig) ||
		errors.Is(err, render.ErrInvalidStyle) {
		return ExitUsage
	}

	if errors.Is(err, app.ErrRender) {
		return ExitGeneral
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
