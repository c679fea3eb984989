// Package version reports build metadata injected at link time
package version

import "runtime/debug"

// BuildInfo holds version information about the binary
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
}

// Set via -ldflags "-X 'eogfeat/internal/core/version.version=v0.1.0'
// -X 'eogfeat/internal/core/version.commit=abcd' -X 'eogfeat/internal/core/version.date=2026-10-01'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information for the named binary
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		bi.GoVersion = info.GoVersion
	}
	return bi
}
