package version

import "fmt"

var (
	Version     = "0.1.0"
	VersionPre  = "dev"
	BuildTime   = ""
	BuildCommit = ""
)

// Get returns the full version string, including any pre-release suffix.
func Get() string {
	if VersionPre != "" {
		return fmt.Sprintf("%s-%s", Version, VersionPre)
	}
	return Version
}
