package magetasks

import (
	"fmt"
	"os/exec"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// haveTool reports whether name is on PATH. A missing tool prints the
// install hint and is not an error.
func haveTool(name, install string) bool {
	if _, err := lookPath(name); err != nil {
		PrintWarning(fmt.Sprintf("%s not found, skipping (install: go install %s)", name, install))
		return false
	}
	return true
}
