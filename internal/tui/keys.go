package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/ssibachir/offer-crm/internal/session"
)

type keyMap struct {
	Dashboard key.Binding
	Inbox     key.Binding
	Pipeline  key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Open      key.Binding
	Back      key.Binding
	Reload    key.Binding
	Quit      key.Binding
	Help      key.Binding

	ScoreUp   key.Binding
	ScoreDown key.Binding
	Generate  key.Binding
	Reject    key.Binding

	Advance key.Binding

	Save       key.Binding
	MarkReady  key.Binding
	Delete     key.Binding
	NextField  key.Binding
	NextStatus key.Binding
	Edit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
		Inbox:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inbox")),
		Pipeline:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pipeline")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Reload:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		ScoreUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "min score")),
		ScoreDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "min score")),
		Generate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate letter")),
		Reject:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),

		Advance: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "advance")),

		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		MarkReady:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark ready")),
		Delete:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		NextStatus: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit letter")),
	}
}

// pageHelp is the help.KeyMap for one page.
type pageHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h pageHelp) ShortHelp() []key.Binding  { return h.short }
func (h pageHelp) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) forPage(p session.Page, editing bool) pageHelp {
	nav := []key.Binding{k.Dashboard, k.Inbox, k.Pipeline, k.Reload, k.Quit}
	switch p {
	case session.Inbox:
		page := []key.Binding{k.Up, k.Down, k.Open, k.ScoreUp, k.Generate, k.Reject}
		return pageHelp{short: append(page, k.Help), full: [][]key.Binding{page, nav}}
	case session.Pipeline:
		page := []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Open, k.Advance}
		return pageHelp{short: append(page, k.Help), full: [][]key.Binding{page, nav}}
	case session.Details:
		if editing {
			page := []key.Binding{k.NextField, k.Save, k.Back}
			return pageHelp{short: page, full: [][]key.Binding{page}}
		}
		page := []key.Binding{k.Edit, k.NextStatus, k.Save, k.MarkReady, k.Delete, k.Back}
		return pageHelp{short: append(page, k.Help), full: [][]key.Binding{page, nav}}
	default:
		page := []key.Binding{k.Up, k.Down, k.Open}
		return pageHelp{short: append(page, k.Inbox, k.Pipeline, k.Help), full: [][]key.Binding{page, nav}}
	}
}
