package magetasks

import (
	"io"
	"os"
	"path/filepath"
)

var (
	// ModulePath is the Go module path.
	ModulePath = "github.com/ssibachir/offer-crm"

	// BinPath is the output path for the built binary.
	BinPath = "./bin/offercrm"

	// MainPackage is the package built by Build.
	MainPackage = "./cmd/offercrm"

	// ProjectRoot is the root directory of the project.
	ProjectRoot string

	// Out receives the task headers and status lines.
	Out io.Writer = os.Stdout
)

// Initialize sets up the magetasks package.
// Call this from the Magefile init() function.
func Initialize() error {
	var err error
	ProjectRoot, err = os.Getwd()
	if err != nil {
		return err
	}

	// Ensure bin directory exists
	binDir := filepath.Join(ProjectRoot, "bin")
	return os.MkdirAll(binDir, 0o750)
}
