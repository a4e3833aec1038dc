// Package version carries build metadata for the mcoracle binary.
package version

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/newtron-network/mcoracle/pkg/version.Version=v0.3.0 \
//	  -X github.com/newtron-network/mcoracle/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/mcoracle/pkg/version.BuildDate=2026-01-01T00:00:00Z" ./cmd/mcoracle
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}

// Fields returns the build metadata for JSON output.
func Fields() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
	}
}
