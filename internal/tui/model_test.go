package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssibachir/offer-crm/internal/session"
	"github.com/ssibachir/offer-crm/internal/store"
	"github.com/ssibachir/offer-crm/internal/tracker"
	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/status"
)

type fakeStore struct {
	mu      sync.Mutex
	records []job.Record
	calls   []string
	fail    error
	listErr error
}

func (f *fakeStore) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeStore) find(id string) int {
	for i, r := range f.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeStore) FetchAll(context.Context) ([]job.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return job.CloneAll(f.records), nil
}

func (f *fakeStore) Refresh(ctx context.Context) ([]job.Record, error) { return f.FetchAll(ctx) }

func (f *fakeStore) Advance(_ context.Context, id string) (status.Status, error) {
	if err := f.record("advance " + id); err != nil {
		return status.Status{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	next, _ := status.Next(f.records[i].Status)
	f.records[i].Status = next
	return next, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id string, s status.Status) error {
	if err := f.record("status " + id + " " + s.Label()); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[f.find(id)].Status = s
	return nil
}

func (f *fakeStore) MarkReady(_ context.Context, id, letter string) error {
	if err := f.record("ready " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	f.records[i].CoverLetter = letter
	f.records[i].Status = status.Ready
	return nil
}

func (f *fakeStore) SaveDetails(_ context.Context, id string, d tracker.Details) error {
	if err := f.record("save " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	f.records[i].CoverLetter = d.CoverLetter
	f.records[i].Status = d.Status
	f.records[i].Contact = d.Contact
	f.records[i].FollowUp = d.FollowUp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if err := f.record("delete " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(id)
	if i < 0 {
		return &store.NotFoundError{ID: id}
	}
	f.records = append(f.records[:i], f.records[i+1:]...)
	return nil
}

func sampleRecords() []job.Record {
	return []job.Record{
		{ID: "a", Title: "Backend engineer", Company: "Acme", Score: 9, Status: status.ToAnalyze, Description: "Go services"},
		{ID: "b", Title: "SRE", Company: "Globex", Score: 6, Status: status.ToAnalyze},
		{ID: "c", Title: "Data engineer", Company: "Initech", Score: 7, Status: status.Ready, CoverLetter: "Dear team"},
	}
}

// newTestModel returns a sized model with the fake store's records loaded.
func newTestModel(t *testing.T) (Model, *fakeStore) {
	t.Helper()
	fs := &fakeStore{records: sampleRecords()}
	m := New(context.Background(), fs, Options{
		Now: func() time.Time { return time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC) },
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 45})
	records, err := fs.FetchAll(context.Background())
	require.NoError(t, err)
	m = update(t, m, recordsMsg{records: records})
	return m, fs
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and runs the command it returns when it is a mutation
// or a load; other commands (blink, quit) are not executed.
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func pressAndRun(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := press(t, m, k)
	require.NotNil(t, cmd, "key %q produced no command", k)
	return update(t, m, cmd())
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestModel_StartsOnDashboard(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	assert.Equal(t, session.Dashboard, m.State().Page)
	assert.Contains(t, m.View(), "High priority")
	assert.Contains(t, m.View(), "Backend engineer")
}

func TestModel_OpensDetails_When_EnterOnInbox(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m, _ = press(t, m, "i")
	require.Equal(t, session.Inbox, m.State().Page)

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "enter")

	snap := m.State()
	assert.Equal(t, session.Details, snap.Page)
	assert.Equal(t, "b", snap.SelectedID)
	assert.Contains(t, m.View(), "SRE")
}

func TestModel_FiltersInboxByMinScore(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m, _ = press(t, m, "i")
	for range 7 {
		m, _ = press(t, m, "+")
	}
	assert.InDelta(t, 7.0, m.minScore, 0.001)
	assert.Contains(t, m.View(), "Backend engineer")
	assert.NotContains(t, m.View(), "Globex")

	for range 20 {
		m, _ = press(t, m, "-")
	}
	assert.Zero(t, m.minScore)
}

func TestModel_DeletesOnSecondPress_When_DeleteIsArmed(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	require.Equal(t, "a", m.State().SelectedID)

	m, cmd := press(t, m, "D")
	assert.Nil(t, cmd)
	assert.Equal(t, "a", m.State().ConfirmDelete)
	assert.Contains(t, m.View(), "Press D again")

	m = pressAndRun(t, m, "D")

	snap := m.State()
	assert.Equal(t, session.Inbox, snap.Page)
	assert.Empty(t, snap.SelectedID)
	assert.Empty(t, snap.ConfirmDelete)
	assert.Equal(t, []string{"delete a"}, fs.calls)
	_, found := job.Find(m.records, "a")
	assert.False(t, found)
}

func TestModel_DisarmsDelete_When_NavigatingAway(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "D")
	require.Equal(t, "a", m.State().ConfirmDelete)

	m, _ = press(t, m, "esc")
	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "D")

	assert.Nil(t, cmd, "first press after navigating must only arm")
	assert.Equal(t, "a", m.State().ConfirmDelete)
	assert.Empty(t, fs.calls)
}

func TestModel_DisarmsDelete_When_AnotherDetailsActionFollows(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "D")
	require.Equal(t, "a", m.State().ConfirmDelete)

	m, _ = press(t, m, "s")
	assert.Empty(t, m.State().ConfirmDelete)
	assert.NotContains(t, m.View(), "Press D again")

	m = pressAndRun(t, m, "ctrl+s")
	assert.Empty(t, m.State().ConfirmDelete)

	m, cmd := press(t, m, "D")
	assert.Nil(t, cmd, "a single press after other actions must only arm")
	assert.Equal(t, "a", m.State().ConfirmDelete)
	assert.Equal(t, []string{"save a"}, fs.calls)
}

func TestModel_DisarmsDelete_When_ScrollingDescription(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "D")
	m, _ = press(t, m, "down")

	assert.Empty(t, m.State().ConfirmDelete)
}

func TestModel_KeepsState_When_DeleteFails(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "D")
	fs.fail = &store.ConnectionError{Op: "delete", Err: errors.New("timeout")}

	m = pressAndRun(t, m, "D")

	snap := m.State()
	assert.Equal(t, session.Details, snap.Page)
	assert.Equal(t, "a", snap.SelectedID)
	require.Error(t, m.err)
	assert.Len(t, m.records, 3)
	assert.False(t, m.busy)
}

func TestModel_IgnoresMutations_While_OneIsInFlight(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m, _ = press(t, m, "i")
	m, first := press(t, m, "g")
	require.NotNil(t, first)
	require.True(t, m.busy)

	m, second := press(t, m, "x")
	assert.Nil(t, second)

	m = update(t, m, first())
	assert.False(t, m.busy)
	r, ok := job.Find(m.records, "a")
	require.True(t, ok)
	assert.Equal(t, status.GenerateLetter, r.Status)
}

func TestModel_AdvancesCard_When_PressingNextOnPipeline(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "p")
	// First column holds ToAnalyze sorted by score, so "a" is on top.
	m = pressAndRun(t, m, "n")

	assert.Equal(t, []string{"advance a"}, fs.calls)
	r, _ := job.Find(m.records, "a")
	assert.Equal(t, status.GenerateLetter, r.Status)
	assert.Equal(t, session.Pipeline, m.State().Page)
}

func TestModel_DoesNotAdvance_When_CardIsTerminal(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	fs.records[2].Status = status.Applied
	records, _ := fs.FetchAll(context.Background())
	m = update(t, m, recordsMsg{records: records})

	m, _ = press(t, m, "p")
	m, _ = press(t, m, "h") // wrap to the Applied column
	m, _ = press(t, m, "h")
	_, cmd := press(t, m, "n")

	assert.Nil(t, cmd)
	assert.Empty(t, fs.calls)
}

func TestModel_SavesEditedDetails(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")

	m, _ = press(t, m, "s")
	assert.Equal(t, status.GenerateLetter, m.detail.status)

	m, _ = press(t, m, "e")
	require.Equal(t, fieldLetter, m.detail.focus)
	for _, r := range "Hello" {
		m, _ = press(t, m, string(r))
	}
	m, _ = press(t, m, "tab")
	require.Equal(t, fieldContact, m.detail.focus)
	for _, r := range "Jane" {
		m, _ = press(t, m, string(r))
	}

	m = pressAndRun(t, m, "ctrl+s")

	assert.Equal(t, []string{"save a"}, fs.calls)
	r, _ := job.Find(m.records, "a")
	assert.Equal(t, "Hello", r.CoverLetter)
	assert.Equal(t, "Jane", r.Contact)
	assert.Equal(t, status.GenerateLetter, r.Status)
	assert.Equal(t, fieldNone, m.detail.focus)
	assert.Equal(t, "Saved", m.notice)
}

func TestModel_MarksReady_WithEditorLetter(t *testing.T) {
	t.Parallel()

	m, fs := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	m.detail.letter.SetValue("Dear Acme")

	m = pressAndRun(t, m, "r")

	assert.Equal(t, []string{"ready a"}, fs.calls)
	r, _ := job.Find(m.records, "a")
	assert.Equal(t, status.Ready, r.Status)
	assert.Equal(t, "Dear Acme", r.CoverLetter)
}

func TestModel_ShowsEmptyInbox_When_NothingToAnalyze(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m = update(t, m, recordsMsg{records: []job.Record{
		{ID: "c", Title: "Data engineer", Company: "Initech", Score: 7, Status: status.Ready},
	}})
	m, _ = press(t, m, "i")

	assert.Contains(t, m.View(), "Inbox empty!")
}

func TestModel_KeepsRecords_When_ReloadFails(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m = update(t, m, recordsMsg{err: &store.ConnectionError{Op: "list", Err: errors.New("offline")}})

	assert.Len(t, m.records, 3)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "offline")
}

func TestModel_ShowsOnlyRemediation_When_FirstLoadFails(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{
		records: sampleRecords(),
		listErr: &store.ConnectionError{Op: "list", Err: errors.New("offline")},
	}
	m := New(context.Background(), fs, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 45})
	m = update(t, m, m.load(false)())

	view := m.View()
	assert.Contains(t, view, "Could not load jobs")
	assert.Contains(t, view, "offline")
	assert.Contains(t, view, "R retry")
	assert.NotContains(t, view, "Total")
	assert.NotContains(t, view, "Conversion")
	assert.NotContains(t, view, "No jobs yet")

	fs.listErr = nil
	m = pressAndRun(t, m, "R")
	assert.True(t, m.loaded)
	assert.NoError(t, m.err)
	assert.Contains(t, m.View(), "High priority")
}

func TestModel_FallsBackToInbox_When_SelectedRecordVanishes(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m, _ = press(t, m, "i")
	m, _ = press(t, m, "enter")
	m = update(t, m, recordsMsg{records: sampleRecords()[1:]})

	assert.Contains(t, m.View(), "Job not found")
	m, _ = press(t, m, "esc")
	assert.Equal(t, session.Inbox, m.State().Page)
}

func TestModel_Quits_When_PressingQ(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
