package common

import "fmt"

// Set with -ldflags "-X github.com/bobmcallan/gripvest/internal/common.Version=..."
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// Info returns the build details of the running binary.
func Info() BuildInfo {
	return BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
}

func GetVersion() string {
	return Version
}

func GetBuild() string {
	return Build
}

func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion returns e.g. "1.2.0 (build: 2025-03-01, commit: abc123)".
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}
