// Package appinfo holds build-time identity for the qdirstat-go binary:
// its version and debug-toggle environment variable, the way a CLI's root
// command reports itself to the user.
package appinfo

import "fmt"

const (
	// VersionMajor is the current major version.
	VersionMajor = 0
	// VersionMinor is the current minor version.
	VersionMinor = 1
	// VersionPatch is the current patch version.
	VersionPatch = 0
)

// Version is the dotted version string, assembled once at init time.
var Version string

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
