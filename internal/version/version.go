// Package version carries build metadata, set at link time with
// -ldflags "-X github.com/seantiz/tasksolver/internal/version.Version=...".
package version

import "runtime"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GoVersion returns the Go runtime version string.
func GoVersion() string { return runtime.Version() }
