package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ssibachir/offer-crm/internal/config"
	"github.com/ssibachir/offer-crm/pkg/stats"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// DefaultTheme returns the built-in palette.
func DefaultTheme() config.ThemeConfig {
	return config.ThemeConfig{
		Colors: config.ThemeColors{
			Primary:   "#7D56F4", // Purple
			Success:   "#10B981", // Green
			Error:     "#EF4444", // Red
			Warning:   "#F59E0B", // Amber
			Muted:     "#6B7280", // Gray
			Text:      "#E5E7EB", // Light gray
			Border:    "#374151", // Dark gray
			Highlight: "#7D56F4", // Purple (same as primary)
		},
		Icons: config.ThemeIcons{
			Select:    "\u25b6",     // ▶
			Dashboard: "\U0001F4CA", // 📊
			Inbox:     "\U0001F4E5", // 📥
			Pipeline:  "\U0001F4CB", // 📋
			Warning:   "\u26a0",     // ⚠
		},
		Title: config.ThemeTitle{
			Text: "Offer CRM",
			Icon: "\U0001F4BC", // 💼
		},
		Spinner: config.ThemeSpinner{
			Frames:   "\u280b \u2819 \u2838 \u2834 \u2826 \u2807", // ⠋ ⠙ ⠸ ⠴ ⠦ ⠇
			Interval: 120,
		},
	}
}

// mergeWithDefaults fills in missing values from the default theme.
func mergeWithDefaults(t config.ThemeConfig) config.ThemeConfig {
	def := DefaultTheme()
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}

	fill(&t.Colors.Primary, def.Colors.Primary)
	fill(&t.Colors.Success, def.Colors.Success)
	fill(&t.Colors.Error, def.Colors.Error)
	fill(&t.Colors.Warning, def.Colors.Warning)
	fill(&t.Colors.Muted, def.Colors.Muted)
	fill(&t.Colors.Text, def.Colors.Text)
	fill(&t.Colors.Border, def.Colors.Border)
	fill(&t.Colors.Highlight, def.Colors.Highlight)

	fill(&t.Icons.Select, def.Icons.Select)
	fill(&t.Icons.Dashboard, def.Icons.Dashboard)
	fill(&t.Icons.Inbox, def.Icons.Inbox)
	fill(&t.Icons.Pipeline, def.Icons.Pipeline)
	fill(&t.Icons.Warning, def.Icons.Warning)

	fill(&t.Title.Text, def.Title.Text)
	fill(&t.Title.Icon, def.Title.Icon)

	fill(&t.Spinner.Frames, def.Spinner.Frames)
	if t.Spinner.Interval <= 0 {
		t.Spinner.Interval = def.Spinner.Interval
	}
	return t
}

// Theme holds pre-built lipgloss styles.
type Theme struct {
	colorPrimary   lipgloss.Color
	colorSuccess   lipgloss.Color
	colorError     lipgloss.Color
	colorWarning   lipgloss.Color
	colorMuted     lipgloss.Color
	colorText      lipgloss.Color
	colorBorder    lipgloss.Color
	colorHighlight lipgloss.Color

	TitleStyle       lipgloss.Style
	SidebarStyle     lipgloss.Style
	PanelStyle       lipgloss.Style
	HeaderStyle      lipgloss.Style
	SelectedStyle    lipgloss.Style
	UnselectedStyle  lipgloss.Style
	MutedStyle       lipgloss.Style
	ErrorStyle       lipgloss.Style
	WarningStyle     lipgloss.Style
	SuccessStyle     lipgloss.Style
	KPIStyle         lipgloss.Style
	KPIValueStyle    lipgloss.Style
	StatusBarStyle   lipgloss.Style
	ActiveNavStyle   lipgloss.Style
	InactiveNavStyle lipgloss.Style

	Icons config.ThemeIcons

	TitleText string
	TitleIcon string

	SpinnerFrames   []string
	SpinnerInterval int
}

// CompileTheme builds lipgloss styles from a theme configuration. Empty
// fields fall back to DefaultTheme.
func CompileTheme(cfg config.ThemeConfig) *Theme {
	cfg = mergeWithDefaults(cfg)
	t := &Theme{}

	t.colorPrimary = lipgloss.Color(cfg.Colors.Primary)
	t.colorSuccess = lipgloss.Color(cfg.Colors.Success)
	t.colorError = lipgloss.Color(cfg.Colors.Error)
	t.colorWarning = lipgloss.Color(cfg.Colors.Warning)
	t.colorMuted = lipgloss.Color(cfg.Colors.Muted)
	t.colorText = lipgloss.Color(cfg.Colors.Text)
	t.colorBorder = lipgloss.Color(cfg.Colors.Border)
	t.colorHighlight = lipgloss.Color(cfg.Colors.Highlight)

	titleBg := t.colorPrimary
	if cfg.Title.Background != "" {
		titleBg = lipgloss.Color(cfg.Title.Background)
	}
	t.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(titleBg).
		Padding(0, 1)

	t.SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.colorBorder).
		Padding(0, 1)

	t.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.colorPrimary).
		Padding(0, 1)

	t.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.colorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.colorBorder)

	t.SelectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(t.colorHighlight)

	t.UnselectedStyle = lipgloss.NewStyle().Foreground(t.colorText)
	t.MutedStyle = lipgloss.NewStyle().Foreground(t.colorMuted)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.colorError).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(t.colorWarning).Bold(true)
	t.SuccessStyle = lipgloss.NewStyle().Foreground(t.colorSuccess).Bold(true)

	t.KPIStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.colorBorder).
		Padding(0, 1).
		Align(lipgloss.Center)
	t.KPIValueStyle = lipgloss.NewStyle().Bold(true).Foreground(t.colorText)

	t.StatusBarStyle = lipgloss.NewStyle().Foreground(t.colorMuted)

	t.ActiveNavStyle = lipgloss.NewStyle().Bold(true).Foreground(t.colorPrimary)
	t.InactiveNavStyle = lipgloss.NewStyle().Foreground(t.colorText)

	t.Icons = cfg.Icons
	t.TitleText = cfg.Title.Text
	t.TitleIcon = cfg.Title.Icon
	t.SpinnerFrames = parseSpinnerFrames(cfg.Spinner.Frames)
	t.SpinnerInterval = cfg.Spinner.Interval

	return t
}

// StatusStyle colours text with the status's own colour.
func (t *Theme) StatusStyle(s status.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Definition().Color))
}

// StatusBadge renders the status icon and label.
func (t *Theme) StatusBadge(s status.Status) string {
	d := s.Definition()
	return t.StatusStyle(s).Render(d.Icon + " " + d.Label)
}

// ScoreBadge colours a score by band.
func (t *Theme) ScoreBadge(score float64) string {
	style := t.MutedStyle
	switch stats.ScoreBand(score) {
	case stats.BandHigh:
		style = t.SuccessStyle
	case stats.BandMedium:
		style = t.WarningStyle
	}
	return style.Render(formatScore(score))
}

// parseSpinnerFrames splits space-separated spinner characters.
func parseSpinnerFrames(s string) []string {
	var frames []string
	for _, r := range s {
		if r != ' ' {
			frames = append(frames, string(r))
		}
	}
	if len(frames) == 0 {
		return []string{"\u280b", "\u2819", "\u2838", "\u2834", "\u2826", "\u2807"}
	}
	return frames
}
