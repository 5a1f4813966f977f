package version

import "fmt"

// Version is the release version embedded in the binary.
// Override at build time with:
// go build -ldflags "-X github.com/oukeidos/docsync/internal/version.Version=0.2.0"
var Version = "0.1.0"

// Commit is the git commit hash embedded in the binary.
var Commit = "unknown"

// BuildDate is the RFC3339 build timestamp embedded in the binary.
var BuildDate = "unknown"

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("docsync %s\ncommit: %s\nbuild: %s", Version, Commit, BuildDate)
}

// Short returns the one-line form used by --version.
func Short() string {
	return fmt.Sprintf("docsync %s (%s)", Version, Commit)
}
