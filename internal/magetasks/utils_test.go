package magetasks

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLookPath makes every tool in missing unavailable.
func stubLookPath(t *testing.T, missing ...string) {
	t.Helper()
	prev := lookPath
	lookPath = func(name string) (string, error) {
		for _, m := range missing {
			if m == name {
				return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
			}
		}
		return "/usr/bin/" + name, nil
	}
	t.Cleanup(func() { lookPath = prev })
}

func TestHaveTool_WarnsWithInstallHint_When_ToolIsMissing(t *testing.T) {
	buf := capture(t)
	stubLookPath(t, "staticcheck")

	assert.False(t, haveTool("staticcheck", "honnef.co/go/tools/cmd/staticcheck@latest"))
	assert.Contains(t, buf.String(), "staticcheck not found, skipping")
	assert.Contains(t, buf.String(), "go install honnef.co/go/tools/cmd/staticcheck@latest")
}

func TestHaveTool_IsSilent_When_ToolIsOnPath(t *testing.T) {
	buf := capture(t)
	stubLookPath(t)

	assert.True(t, haveTool("golangci-lint", "x"))
	assert.Empty(t, buf.String())
}

func TestLinterRun_SkipsOptionalTool_When_NotInstalled(t *testing.T) {
	buf := capture(t)
	stubLookPath(t, "golangci-lint")

	err := golangciLinter.run()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "=== Golangci-lint ===")
	assert.Contains(t, buf.String(), "golangci-lint not found")
}

func TestLinterWithArgs_InsertsBeforePackagePattern(t *testing.T) {
	t.Parallel()

	fix := golangciLinter.withArgs("Golangci-lint Fix", "--fix")

	assert.Equal(t, "Golangci-lint Fix", fix.title)
	assert.Equal(t, []string{"run", golangciDisabled, "--timeout=5m", "--fix", "./..."}, fix.args)
	assert.Equal(t, []string{"run", golangciDisabled, "--timeout=5m", "./..."}, golangciLinter.args)
}

func TestLinterRun_WrapsFailureWithTitle(t *testing.T) {
	capture(t)
	stubLookPath(t)

	l := linter{title: "Broken", tool: "offercrm-no-such-binary", args: []string{"./..."}}
	err := l.run()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken:")
}
