// Package version carries build metadata for offercrm.
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"     // Default value if not built with LDFLAGS
	CommitHash = "unknown" // Default value
	BuildDate  = "unknown" // Default value
)

// String is the multi-line text printed by `offercrm version`. When the
// binary was built without LDFLAGS the module version from the build info is
// used instead of "dev".
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("offercrm version %s\nCommit: %s\nBuilt: %s\n", v, CommitHash, BuildDate)
}
