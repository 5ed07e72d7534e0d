// Package render prints a dashboard summary for non-interactive use.
package render

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ssibachir/offer-crm/pkg/stats"
)

// Format names accepted by New.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Renderer converts a summary to output.
type Renderer interface {
	Render(s stats.Summary) string
}

// New returns the renderer for format. Auto resolves against w.
func New(format string, w io.Writer) (Renderer, error) {
	switch ResolveFormat(format, w) {
	case FormatText:
		return NewText(), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected auto, text, json)", format)
	}
}

// ResolveFormat maps auto to text on a terminal and json otherwise.
func ResolveFormat(format string, w io.Writer) string {
	if format != "" && format != FormatAuto {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return FormatText
	}
	return FormatJSON
}
