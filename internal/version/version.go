// Package version exposes build information stamped in via ldflags.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X lolanalysis/internal/version.Version=v0.2.0 ..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single-line human-readable version string.
func Info() string {
	return fmt.Sprintf("lolanalysis %s (commit %s, built %s)", Version, Commit, Date)
}
