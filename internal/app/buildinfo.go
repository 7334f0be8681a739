package app

import "fmt"

// Set with -ldflags "-X github.com/hyperifyio/evidencepdf/internal/app.BuildVersion=...".
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// VersionString is the one-line form printed by --version.
func VersionString() string {
	return fmt.Sprintf("evidencepdf %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
