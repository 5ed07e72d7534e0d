// Package tui is the interactive dashboard: a bubbletea program with a
// sidebar and four pages (dashboard, inbox, pipeline and details).
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/ssibachir/offer-crm/internal/session"
	"github.com/ssibachir/offer-crm/internal/store"
	"github.com/ssibachir/offer-crm/internal/tracker"
	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/stats"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// Store is the part of the tracker the dashboard uses.
type Store interface {
	FetchAll(ctx context.Context) ([]job.Record, error)
	Refresh(ctx context.Context) ([]job.Record, error)
	Advance(ctx context.Context, id string) (status.Status, error)
	SetStatus(ctx context.Context, id string, s status.Status) error
	MarkReady(ctx context.Context, id, coverLetter string) error
	SaveDetails(ctx context.Context, id string, d tracker.Details) error
	Delete(ctx context.Context, id string) error
}

var _ Store = (*tracker.Tracker)(nil)

// Options configures the dashboard.
type Options struct {
	Theme             *Theme
	Locale            language.Tag
	HighPriorityScore float64
	Now               func() time.Time
	Logger            *slog.Logger
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, s Store, opts Options) error {
	program := tea.NewProgram(New(ctx, s, opts), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

const (
	sidebarWidth  = 28
	minScoreLimit = 10.0
)

type field int

const (
	fieldNone field = iota
	fieldLetter
	fieldContact
	fieldFollowUp
)

// detailEditor holds the editable state of the details page for one record.
type detailEditor struct {
	id          string
	status      status.Status
	letter      textarea.Model
	contact     textinput.Model
	followUp    textinput.Model
	description viewport.Model
	focus       field
}

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	store  Store
	theme  *Theme
	keys   keyMap
	logger *slog.Logger

	locale    language.Tag
	highScore float64
	now       func() time.Time

	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	state    *session.State

	records []job.Record
	loaded  bool
	loading bool
	busy    bool
	err     error
	notice  string

	width  int
	height int

	dashCursor  int
	inboxCursor int
	minScore    float64
	pipeCol     int
	pipeRow     int

	detail detailEditor
}

// New builds the model. Records are loaded by Init.
func New(ctx context.Context, s Store, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = CompileTheme(DefaultTheme())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HighPriorityScore <= 0 {
		opts.HighPriorityScore = stats.HighScore
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	th := opts.Theme

	sp := spinner.New(
		spinner.WithSpinner(spinner.Spinner{
			Frames: th.SpinnerFrames,
			FPS:    time.Duration(th.SpinnerInterval) * time.Millisecond,
		}),
		spinner.WithStyle(th.WarningStyle),
	)

	pr := progress.New(
		progress.WithSolidFill(string(th.colorSuccess)),
		progress.WithoutPercentage(),
		progress.WithWidth(sidebarWidth-6),
	)

	return Model{
		ctx:       ctx,
		store:     s,
		theme:     th,
		keys:      defaultKeyMap(),
		logger:    opts.Logger.With("component", "tui"),
		locale:    opts.Locale,
		highScore: opts.HighPriorityScore,
		now:       opts.Now,
		help:      help.New(),
		spinner:   sp,
		progress:  pr,
		state:     session.New(),
		loading:   true,
		detail:    newDetailEditor(),
	}
}

func newDetailEditor() detailEditor {
	ta := textarea.New()
	ta.Placeholder = "Your cover letter..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(8)

	contact := textinput.New()
	contact.Placeholder = "Name, phone or email"
	contact.Prompt = ""

	followUp := textinput.New()
	followUp.Placeholder = "e.g. call back on Friday"
	followUp.Prompt = ""

	return detailEditor{
		letter:      ta,
		contact:     contact,
		followUp:    followUp,
		description: viewport.New(0, 6),
	}
}

// Init loads the table and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(false), m.spinner.Tick)
}

// State exposes the session for tests and logs.
func (m Model) State() session.Snapshot { return m.state.Snapshot() }

type recordsMsg struct {
	records []job.Record
	err     error
}

type mutationOp string

const (
	opSave     mutationOp = "save"
	opReady    mutationOp = "mark ready"
	opStatus   mutationOp = "set status"
	opAdvance  mutationOp = "advance"
	opDelete   mutationOp = "delete"
	opGenerate mutationOp = "generate letter"
	opReject   mutationOp = "reject"
)

// mutationMsg reports a mutation and the refetch that follows it.
type mutationMsg struct {
	op       mutationOp
	id       string
	records  []job.Record
	err      error
	fetchErr error
}

func (m Model) load(refresh bool) tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		var (
			records []job.Record
			err     error
		)
		if refresh {
			records, err = s.Refresh(ctx)
		} else {
			records, err = s.FetchAll(ctx)
		}
		return recordsMsg{records: records, err: err}
	}
}

// mutate runs fn then refetches the table. Only one mutation runs at a time;
// further requests are dropped until it completes.
func (m Model) mutate(op mutationOp, id string, fn func(context.Context) error) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.err = nil
	m.notice = ""
	ctx, s := m.ctx, m.store
	return m, func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutationMsg{op: op, id: id, err: err}
		}
		records, err := s.FetchAll(ctx)
		return mutationMsg{op: op, id: id, records: records, fetchErr: err}
	}
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case recordsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("load failed", "error", msg.err)
			return m, nil
		}
		m.err = nil
		m.records = msg.records
		m.loaded = true
		m.clampCursors()
		m.syncDetail(false)
		return m, nil

	case mutationMsg:
		return m.applyMutation(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToEditor(msg)
}

func (m Model) applyMutation(msg mutationMsg) Model {
	m.busy = false
	if msg.err != nil {
		m.err = msg.err
		if store.IsNotFound(msg.err) {
			m.err = fmt.Errorf("%s failed: job not found", msg.op)
		}
		return m
	}

	if msg.op == opDelete {
		m.state.Deleted(msg.id)
	} else {
		m.state.Disarm()
	}
	if msg.fetchErr != nil {
		m.err = msg.fetchErr
	} else {
		m.records = msg.records
	}
	m.notice = noticeFor(msg.op)
	m.clampCursors()
	m.syncDetail(msg.id == m.detail.id)
	return m
}

func noticeFor(op mutationOp) string {
	switch op {
	case opSave:
		return "Saved"
	case opReady:
		return "Marked ready"
	case opDelete:
		return "Job deleted"
	case opGenerate:
		return "Moved to Generate Cover Letter"
	case opReject:
		return "Rejected"
	case opAdvance:
		return "Moved to next stage"
	default:
		return "Updated"
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	page := m.state.Page()
	if page == session.Details && !key.Matches(msg, m.keys.Delete) {
		m.state.Disarm()
	}
	if page == session.Details && m.detail.focus != fieldNone {
		return m.handleEditorKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.load(true)
	case key.Matches(msg, m.keys.Dashboard):
		m.navigate(session.Dashboard)
		return m, nil
	case key.Matches(msg, m.keys.Inbox):
		m.navigate(session.Inbox)
		return m, nil
	case key.Matches(msg, m.keys.Pipeline):
		m.navigate(session.Pipeline)
		return m, nil
	}

	switch page {
	case session.Inbox:
		return m.updateInbox(msg)
	case session.Pipeline:
		return m.updatePipeline(msg)
	case session.Details:
		return m.updateDetails(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m *Model) navigate(p session.Page) {
	m.state.Navigate(p)
	m.notice = ""
	m.err = nil
	m.syncDetail(false)
}

func (m *Model) open(id string) {
	m.state.Select(id)
	m.notice = ""
	m.err = nil
	m.syncDetail(false)
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := stats.HighPriority(m.records, m.highScore, status.ToAnalyze)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.dashCursor = max(0, m.dashCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.dashCursor = min(max(0, len(list)-1), m.dashCursor+1)
	case key.Matches(msg, m.keys.Open):
		if m.dashCursor < len(list) {
			m.open(list[m.dashCursor].ID)
		}
	}
	return m, nil
}

func (m Model) updateInbox(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := stats.Inbox(m.records, m.minScore)
	current := func() (string, bool) {
		if m.inboxCursor < len(view.Records) {
			return view.Records[m.inboxCursor].ID, true
		}
		return "", false
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.inboxCursor = max(0, m.inboxCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.inboxCursor = min(max(0, len(view.Records)-1), m.inboxCursor+1)
	case key.Matches(msg, m.keys.ScoreUp):
		m.minScore = min(minScoreLimit, m.minScore+1)
		m.clampCursors()
	case key.Matches(msg, m.keys.ScoreDown):
		m.minScore = max(0, m.minScore-1)
		m.clampCursors()
	case key.Matches(msg, m.keys.Open):
		if id, ok := current(); ok {
			m.open(id)
		}
	case key.Matches(msg, m.keys.Generate):
		if id, ok := current(); ok {
			s := m.store
			return m.mutate(opGenerate, id, func(ctx context.Context) error {
				return s.SetStatus(ctx, id, status.GenerateLetter)
			})
		}
	case key.Matches(msg, m.keys.Reject):
		if id, ok := current(); ok {
			s := m.store
			return m.mutate(opReject, id, func(ctx context.Context) error {
				return s.SetStatus(ctx, id, status.Rejected)
			})
		}
	}
	return m, nil
}

func (m Model) pipelineColumn() []job.Record {
	cols := status.Pipeline()
	return stats.Column(m.records, cols[m.pipeCol])
}

func (m Model) updatePipeline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ncols := len(status.Pipeline())
	switch {
	case key.Matches(msg, m.keys.Left):
		m.pipeCol = (m.pipeCol + ncols - 1) % ncols
		m.pipeRow = 0
	case key.Matches(msg, m.keys.Right):
		m.pipeCol = (m.pipeCol + 1) % ncols
		m.pipeRow = 0
	case key.Matches(msg, m.keys.Up):
		m.pipeRow = max(0, m.pipeRow-1)
	case key.Matches(msg, m.keys.Down):
		m.pipeRow = min(max(0, len(m.pipelineColumn())-1), m.pipeRow+1)
	case key.Matches(msg, m.keys.Open):
		if col := m.pipelineColumn(); m.pipeRow < len(col) {
			m.open(col[m.pipeRow].ID)
		}
	case key.Matches(msg, m.keys.Advance):
		col := m.pipelineColumn()
		if m.pipeRow >= len(col) {
			return m, nil
		}
		r := col[m.pipeRow]
		if _, ok := status.Next(r.Status); !ok {
			return m, nil
		}
		s := m.store
		return m.mutate(opAdvance, r.ID, func(ctx context.Context) error {
			_, err := s.Advance(ctx, r.ID)
			return err
		})
	}
	return m, nil
}

func (m Model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, ok := m.state.SelectedID()
	if !ok {
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) {
		m.navigate(session.Inbox)
		return m, nil
	}
	if _, found := job.Find(m.records, id); !found {
		return m, nil
	}

	s := m.store
	switch {
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.NextField):
		return m, m.focus(fieldLetter)
	case key.Matches(msg, m.keys.NextStatus):
		m.detail.status = nextInCycle(m.detail.status)
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m.save(id)
	case key.Matches(msg, m.keys.MarkReady):
		letter := m.detail.letter.Value()
		return m.mutate(opReady, id, func(ctx context.Context) error {
			return s.MarkReady(ctx, id, letter)
		})
	case key.Matches(msg, m.keys.Delete):
		if m.busy {
			return m, nil
		}
		if m.state.RequestDelete(id) == session.Armed {
			m.notice = ""
			return m, nil
		}
		return m.mutate(opDelete, id, func(ctx context.Context) error {
			return s.Delete(ctx, id)
		})
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.detail.description, cmd = m.detail.description.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) save(id string) (Model, tea.Cmd) {
	d := tracker.Details{
		CoverLetter: m.detail.letter.Value(),
		Status:      m.detail.status,
		Contact:     m.detail.contact.Value(),
		FollowUp:    m.detail.followUp.Value(),
	}
	s := m.store
	return m.mutate(opSave, id, func(ctx context.Context) error {
		return s.SaveDetails(ctx, id, d)
	})
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.blurAll()
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		next := m.detail.focus + 1
		if next > fieldFollowUp {
			next = fieldLetter
		}
		return m, m.focus(next)
	case key.Matches(msg, m.keys.Save):
		m.blurAll()
		id, ok := m.state.SelectedID()
		if !ok {
			return m, nil
		}
		return m.save(id)
	}
	return m.forwardToEditor(msg)
}

func (m Model) forwardToEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.detail.focus {
	case fieldLetter:
		m.detail.letter, cmd = m.detail.letter.Update(msg)
	case fieldContact:
		m.detail.contact, cmd = m.detail.contact.Update(msg)
	case fieldFollowUp:
		m.detail.followUp, cmd = m.detail.followUp.Update(msg)
	}
	return m, cmd
}

func (m *Model) focus(f field) tea.Cmd {
	m.blurAll()
	m.detail.focus = f
	switch f {
	case fieldLetter:
		return m.detail.letter.Focus()
	case fieldContact:
		return m.detail.contact.Focus()
	case fieldFollowUp:
		return m.detail.followUp.Focus()
	}
	return nil
}

func (m *Model) blurAll() {
	m.detail.letter.Blur()
	m.detail.contact.Blur()
	m.detail.followUp.Blur()
	m.detail.focus = fieldNone
}

// syncDetail loads the selected record into the editors when the selection
// changed, or unconditionally when force is set (after a successful write).
func (m *Model) syncDetail(force bool) {
	id, ok := m.state.SelectedID()
	if !ok || m.state.Page() != session.Details {
		if !ok {
			m.detail.id = ""
		}
		return
	}
	if id == m.detail.id && !force {
		return
	}
	r, found := job.Find(m.records, id)
	if !found {
		return
	}
	m.blurAll()
	m.detail.id = id
	m.detail.status = r.Status
	m.detail.letter.SetValue(r.CoverLetter)
	m.detail.contact.SetValue(r.Contact)
	m.detail.followUp.SetValue(r.FollowUp)
	m.detail.description.SetContent(wrap(r.Description, m.detail.description.Width))
	m.detail.description.GotoTop()
}

func (m *Model) resize() {
	w := m.mainWidth()
	m.help.Width = m.width
	m.detail.letter.SetWidth(max(20, w-4))
	m.detail.contact.Width = max(10, w/2-6)
	m.detail.followUp.Width = max(10, w/2-6)
	m.detail.description.Width = max(20, w-4)
	m.detail.description.Height = max(3, m.height/5)
	if r, ok := job.Find(m.records, m.detail.id); ok {
		m.detail.description.SetContent(wrap(r.Description, m.detail.description.Width))
	}
}

func (m Model) mainWidth() int {
	return max(40, m.width-sidebarWidth-4)
}

func (m *Model) clampCursors() {
	hp := len(stats.HighPriority(m.records, m.highScore, status.ToAnalyze))
	m.dashCursor = clamp(m.dashCursor, hp)
	m.inboxCursor = clamp(m.inboxCursor, len(stats.Inbox(m.records, m.minScore).Records))
	m.pipeRow = clamp(m.pipeRow, len(m.pipelineColumn()))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	return min(i, n-1)
}

// nextInCycle walks every known status, wrapping around; the details page
// may set any status, not only the next pipeline stage.
func nextInCycle(s status.Status) status.Status {
	all := status.All()
	for i, c := range all {
		if c == s {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func formatScore(score float64) string { return fmt.Sprintf("%.1f", score) }

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
