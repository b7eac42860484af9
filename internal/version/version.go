// Package version exposes build information stamped in at link time via
// -ldflags "-X github.com/cityjson/cjseq/internal/version.Version=...".
package version

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the build information on one line.
func String() string {
	return Version + " (" + GitSHA + ", built " + BuildTime + ")"
}
