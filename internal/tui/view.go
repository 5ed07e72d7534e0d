package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ssibachir/offer-crm/internal/config"
	"github.com/ssibachir/offer-crm/internal/session"
	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/stats"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// View renders the whole screen.
func (m Model) View() string {
	th := m.theme
	if !m.loaded {
		if m.err != nil && !m.loading {
			return m.viewLoadError()
		}
		return "\n " + m.spinner.View() + " Loading jobs..."
	}

	titleText := th.TitleIcon + " " + th.TitleText
	title := "\n" + th.TitleStyle.Width(max(m.width, 20)).Render(titleText)

	contentHeight := max(10, m.height-8)

	sidebar := th.SidebarStyle.
		Width(sidebarWidth).
		Render(fitLines(m.viewSidebar(), contentHeight))

	var body string
	switch m.state.Page() {
	case session.Inbox:
		body = m.viewInbox()
	case session.Pipeline:
		body = m.viewPipeline()
	case session.Details:
		body = m.viewDetails()
	default:
		body = m.viewDashboard()
	}
	content := th.PanelStyle.
		Width(m.mainWidth()).
		Render(fitLines(body, contentHeight))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)

	return lipgloss.JoinVertical(lipgloss.Left, title, panels, m.viewStatusBar())
}

// viewLoadError replaces the whole screen while no table could be fetched.
// Nothing else is drawn so empty KPIs are never mistaken for real data.
func (m Model) viewLoadError() string {
	th := m.theme
	lines := []string{
		"",
		th.ErrorStyle.Render(th.Icons.Warning + " Could not load jobs"),
		"",
		"  " + m.err.Error(),
		"",
		th.MutedStyle.Render("  Check the backend credentials in " + config.FileName + ", .env or the environment,"),
		th.MutedStyle.Render("  and that the network is reachable. Run `offercrm ping` to test the connection."),
		"",
		th.StatusBarStyle.Render("  R retry · q quit"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStatusBar() string {
	th := m.theme
	var line string
	switch {
	case m.err != nil:
		line = th.ErrorStyle.Render(th.Icons.Warning + " " + m.err.Error())
	case m.busy:
		line = m.spinner.View() + " Saving..."
	case m.loading:
		line = m.spinner.View() + " Loading..."
	case m.notice != "":
		line = th.SuccessStyle.Render(m.notice)
	}
	help := m.help.View(m.keys.forPage(m.state.Page(), m.detail.focus != fieldNone))
	if line == "" {
		return th.StatusBarStyle.Render(help)
	}
	return line + "\n" + th.StatusBarStyle.Render(help)
}

func (m Model) viewSidebar() string {
	th := m.theme
	k := stats.KPIs(m.records)
	current := m.state.Page()

	nav := func(p session.Page, icon, label string, badge int) string {
		text := icon + " " + label
		if badge > 0 {
			text += " " + th.WarningStyle.Render(fmt.Sprintf("(%d)", badge))
		}
		if p == current || (p == session.Inbox && current == session.Details) {
			return th.ActiveNavStyle.Render(th.Icons.Select + " " + text)
		}
		return th.InactiveNavStyle.Render("  " + text)
	}

	lines := []string{
		nav(session.Dashboard, th.Icons.Dashboard, "Dashboard", 0),
		nav(session.Inbox, th.Icons.Inbox, "Inbox", k.Count(status.ToAnalyze)),
		nav(session.Pipeline, th.Icons.Pipeline, "Pipeline", 0),
		"",
		th.HeaderStyle.Render("Quick stats"),
		fmt.Sprintf("Total jobs    %s", th.KPIValueStyle.Render(fmt.Sprint(k.Total))),
		fmt.Sprintf("Score %s+     %s", formatScore(m.highScore), th.KPIValueStyle.Render(fmt.Sprint(k.HighScoreCount))),
		fmt.Sprintf("Avg score     %s", th.ScoreBadge(k.AverageScore)),
		"",
		fmt.Sprintf("Applied %d/%d", k.Count(status.Applied), k.Total),
		m.progress.ViewAs(k.Progress()),
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewDashboard() string {
	th := m.theme
	k := stats.KPIs(m.records)
	width := m.mainWidth() - 4

	cards := []string{
		kpiCard(th, "Total", fmt.Sprint(k.Total)),
		kpiCard(th, "To analyze", fmt.Sprint(k.Count(status.ToAnalyze))),
		kpiCard(th, "Letters", fmt.Sprint(k.Count(status.GenerateLetter))),
		kpiCard(th, "Ready", fmt.Sprint(k.Count(status.Ready))),
		kpiCard(th, "Applied", fmt.Sprint(k.Count(status.Applied))),
		kpiCard(th, "Avg score", formatScore(k.AverageScore)),
		kpiCard(th, "Conversion", fmt.Sprintf("%.0f%%", k.ConversionRate)),
	}
	sections := []string{lipgloss.JoinHorizontal(lipgloss.Top, cards...)}

	sections = append(sections, th.HeaderStyle.Render("High priority"))
	list := stats.HighPriority(m.records, m.highScore, status.ToAnalyze)
	if len(list) == 0 {
		sections = append(sections, th.MutedStyle.Render(fmt.Sprintf("No job to analyze scored %s or more.", formatScore(m.highScore))))
	}
	for i, r := range list {
		sections = append(sections, m.recordLine(r, i == m.dashCursor, width))
	}

	sections = append(sections, "", th.HeaderStyle.Render("By status"))
	breakdown := stats.Breakdown(m.records)
	for _, c := range breakdown {
		label := padRight(c.Status.Label(), 24)
		b := th.StatusStyle(c.Status).Render(bar(c.Count, k.Total, width-34))
		sections = append(sections, fmt.Sprintf("%s %s %d", label, b, c.Count))
	}
	if len(breakdown) == 0 {
		sections = append(sections, th.MutedStyle.Render("No jobs yet."))
	}

	sections = append(sections, "", th.HeaderStyle.Render("Last 8 weeks"))
	weeks := stats.WeeklyBuckets(m.records, m.now(), m.locale)
	peak := 0
	for _, w := range weeks {
		peak = max(peak, w.Count)
	}
	for _, w := range weeks {
		line := fmt.Sprintf("%s %s %2d", padRight(w.Label, 8), bar(w.Count, peak, 20), w.Count)
		if w.Count > 0 {
			line += th.MutedStyle.Render(fmt.Sprintf("  avg %s  applied %d", formatScore(w.AvgScore), w.AppliedCount))
		}
		sections = append(sections, line)
	}

	return strings.Join(sections, "\n")
}

func kpiCard(th *Theme, label, value string) string {
	return th.KPIStyle.Width(12).Render(th.KPIValueStyle.Render(value) + "\n" + th.MutedStyle.Render(label))
}

func (m Model) viewInbox() string {
	th := m.theme
	view := stats.Inbox(m.records, m.minScore)
	width := m.mainWidth() - 4

	header := fmt.Sprintf("%s  %d pending  |  %s+ %d  |  avg %s  |  min score %s",
		th.HeaderStyle.Render(th.Icons.Inbox+" Inbox"),
		view.Pending,
		formatScore(m.highScore), view.HighScore,
		formatScore(view.AverageScore),
		th.KPIValueStyle.Render(formatScore(m.minScore)),
	)
	lines := []string{header, ""}

	if len(view.Records) == 0 {
		msg := "Inbox empty! Every job has been processed."
		if view.Pending > 0 {
			msg = fmt.Sprintf("No job scored %s or more. Press - to lower the filter.", formatScore(m.minScore))
		}
		lines = append(lines, th.SuccessStyle.Render(msg))
		return strings.Join(lines, "\n")
	}
	for i, r := range view.Records {
		lines = append(lines, m.recordLine(r, i == m.inboxCursor, width))
	}
	return strings.Join(lines, "\n")
}

// recordLine renders "score title · company · location" on one line.
func (m Model) recordLine(r job.Record, selected bool, width int) string {
	th := m.theme
	parts := []string{r.Title, r.Company}
	if r.Location != "" {
		parts = append(parts, r.Location)
	}
	text := truncate(strings.Join(parts, " · "), max(10, width-8))
	if selected {
		return th.SelectedStyle.Width(width).Render(fmt.Sprintf("%s %4s %s", th.Icons.Select, formatScore(r.Score), text))
	}
	return th.UnselectedStyle.Render(fmt.Sprintf("  %s %s", padLeft(th.ScoreBadge(r.Score), 4), text))
}

func (m Model) viewPipeline() string {
	th := m.theme
	cols := status.Pipeline()
	colWidth := max(14, (m.mainWidth()-4)/len(cols)-1)

	rendered := make([]string, 0, len(cols))
	for ci, s := range cols {
		records := stats.Column(m.records, s)
		def := s.Definition()
		head := th.StatusStyle(s).Bold(true).Render(truncate(fmt.Sprintf("%s %s (%d)", def.Icon, def.Label, len(records)), colWidth))
		lines := []string{head, ""}
		for ri, r := range records {
			card := truncate(r.Title, colWidth-2) + "\n" +
				th.MutedStyle.Render(truncate(r.Company, colWidth-8)) + " " + th.ScoreBadge(r.Score)
			if ci == m.pipeCol && ri == m.pipeRow {
				lines = append(lines, th.SelectedStyle.Width(colWidth).Render(card))
			} else {
				lines = append(lines, card)
			}
		}
		if len(records) == 0 {
			lines = append(lines, th.MutedStyle.Render("empty"))
		}
		style := lipgloss.NewStyle().Width(colWidth).MarginRight(1)
		if ci == m.pipeCol {
			style = style.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(th.colorPrimary)
		}
		rendered = append(rendered, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewDetails() string {
	th := m.theme
	id, _ := m.state.SelectedID()
	r, ok := job.Find(m.records, id)
	if !ok {
		return th.ErrorStyle.Render("Job not found.") + "\n\n" + th.MutedStyle.Render("Press esc to go back to the inbox.")
	}

	lines := []string{
		th.HeaderStyle.Render(r.Title),
		fmt.Sprintf("%s  %s  score %s", r.Company, th.StatusBadge(r.Status), th.ScoreBadge(r.Score)),
	}
	meta := []string{}
	if r.Location != "" {
		meta = append(meta, r.Location)
	}
	if r.JobBoard != "" {
		meta = append(meta, "via "+r.JobBoard)
	}
	if r.ScrapedDate != nil {
		meta = append(meta, "found "+r.ScrapedDate.Format(job.DateLayout))
	}
	if r.ApplicationDate != nil {
		meta = append(meta, "applied "+r.ApplicationDate.Format(job.DateLayout))
	}
	if len(meta) > 0 {
		lines = append(lines, th.MutedStyle.Render(strings.Join(meta, " · ")))
	}
	if r.URL != "" {
		lines = append(lines, th.MutedStyle.Render(r.URL))
	}
	if r.ContactEmail != "" {
		lines = append(lines, th.MutedStyle.Render("email "+r.ContactEmail))
	}

	lines = append(lines, "", th.HeaderStyle.Render("Description"))
	if strings.TrimSpace(r.Description) == "" {
		lines = append(lines, th.MutedStyle.Render("No description."))
	} else {
		lines = append(lines, m.detail.description.View())
	}

	lines = append(lines, "", m.fieldLabel("Cover letter", fieldLetter), m.detail.letter.View())

	statusLine := "Status: " + th.StatusBadge(m.detail.status)
	if m.detail.status != r.Status {
		statusLine += th.MutedStyle.Render(" (unsaved)")
	}
	lines = append(lines,
		"",
		statusLine,
		m.fieldLabel("Contact", fieldContact)+" "+m.detail.contact.View(),
		m.fieldLabel("Follow-up", fieldFollowUp)+" "+m.detail.followUp.View(),
	)

	if armed, ok := m.state.Armed(); ok && armed == r.ID {
		lines = append(lines, "", th.WarningStyle.Render(th.Icons.Warning+" Press D again to delete this job. Any other action cancels."))
	}
	return strings.Join(lines, "\n")
}

func (m Model) fieldLabel(label string, f field) string {
	if m.detail.focus == f {
		return m.theme.ActiveNavStyle.Render(label + ":")
	}
	return m.theme.MutedStyle.Render(label + ":")
}

// fitLines pads or truncates content to exactly n lines.
func fitLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < n {
		lines = append(lines, "")
	}
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func bar(n, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := n * width / total
	if n > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat(" ", width-filled)
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// padLeft pads styled text to width using its visible width.
func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
