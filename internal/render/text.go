package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ssibachir/offer-crm/pkg/stats"
)

const titleWidth = 48

// Text renders the summary as plain text. Zero ANSI codes, fixed column
// widths so the output diffs cleanly.
type Text struct{}

// NewText creates a text renderer.
func NewText() *Text {
	return &Text{}
}

// Render formats the summary.
func (t *Text) Render(s stats.Summary) string {
	var sb strings.Builder
	k := s.KPI

	fmt.Fprintf(&sb, "SUMMARY %s\n", s.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "total %d | avg score %.1f | score >= %.0f: %d | conversion %.0f%%\n",
		k.Total, k.AverageScore, stats.HighScore, k.HighScoreCount, k.ConversionRate)

	sb.WriteString("\nBY STATUS\n")
	if len(s.ByStatus) == 0 {
		sb.WriteString("  none\n")
	}
	for _, c := range s.ByStatus {
		fmt.Fprintf(&sb, "  %s %4d\n", runewidth.FillRight(c.Status.Label(), 24), c.Count)
	}

	sb.WriteString("\nHIGH PRIORITY\n")
	if len(s.HighPriority) == 0 {
		sb.WriteString("  none\n")
	}
	for _, r := range s.HighPriority {
		title := runewidth.FillRight(runewidth.Truncate(r.Title, titleWidth, "..."), titleWidth)
		fmt.Fprintf(&sb, "  %4.1f  %s  %s\n", r.Score, title, r.Company)
	}

	sb.WriteString("\nWEEKLY\n")
	for _, w := range s.Weekly {
		fmt.Fprintf(&sb, "  %s %3d jobs  avg %4.1f  %d applied\n",
			runewidth.FillRight(w.Label, 8), w.Count, w.AvgScore, w.AppliedCount)
	}
	return sb.String()
}
