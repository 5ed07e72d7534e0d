// Package session holds the navigation state of one dashboard session: the
// active page, the selected record and the armed delete.
package session

// Page is one screen of the dashboard.
type Page int

const (
	Dashboard Page = iota
	Inbox
	Details
	Pipeline
)

func (p Page) String() string {
	switch p {
	case Inbox:
		return "inbox"
	case Details:
		return "details"
	case Pipeline:
		return "pipeline"
	default:
		return "dashboard"
	}
}

// DeleteDecision is the outcome of RequestDelete.
type DeleteDecision int

const (
	// Armed means the first request was recorded; the caller shows a
	// warning and waits for a second request.
	Armed DeleteDecision = iota
	// Confirmed means the caller should perform the delete.
	Confirmed
)

// State is the session's navigation state. The zero value is the initial
// state: dashboard, nothing selected, nothing armed.
type State struct {
	page          Page
	selectedID    string
	confirmDelete string
}

// New returns the initial state.
func New() *State { return &State{} }

// Page is the page to render. Details without a selection resolves to the
// inbox.
func (s *State) Page() Page {
	s.Resolve()
	return s.page
}

// SelectedID returns the selected record, if any.
func (s *State) SelectedID() (string, bool) {
	return s.selectedID, s.selectedID != ""
}

// Armed returns the record a delete is armed for, if any.
func (s *State) Armed() (string, bool) {
	return s.confirmDelete, s.confirmDelete != ""
}

// Navigate switches page and disarms any pending delete. Navigating to
// Details without a selection lands on the inbox.
func (s *State) Navigate(p Page) {
	s.confirmDelete = ""
	s.page = p
	s.Resolve()
}

// Select makes id the selected record and opens its details.
func (s *State) Select(id string) {
	if id != s.selectedID {
		s.confirmDelete = ""
	}
	s.selectedID = id
	s.page = Details
	s.Resolve()
}

// Resolve enforces that Details always has a selection.
func (s *State) Resolve() {
	if s.page == Details && s.selectedID == "" {
		s.page = Inbox
	}
}

// RequestDelete arms a delete of id, or confirms it when it is already
// armed for id. A request for another record re-arms for that record only.
func (s *State) RequestDelete(id string) DeleteDecision {
	if id != "" && s.confirmDelete == id {
		return Confirmed
	}
	s.confirmDelete = id
	return Armed
}

// Disarm clears a pending delete.
func (s *State) Disarm() { s.confirmDelete = "" }

// Deleted records a successful delete of id: the armed flag is cleared, the
// selection is dropped if it pointed at id, and the inbox is shown.
func (s *State) Deleted(id string) {
	s.confirmDelete = ""
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.page = Inbox
}

// Snapshot is a read-only copy of the state for rendering and logs.
type Snapshot struct {
	Page          Page
	SelectedID    string
	ConfirmDelete string
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.Resolve()
	return Snapshot{Page: s.page, SelectedID: s.selectedID, ConfirmDelete: s.confirmDelete}
}
