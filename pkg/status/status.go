// Package status models the application pipeline: the closed set of stages a
// job record moves through, their display metadata, and the forward/backward
// transition rules used by the kanban board.
package status

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type code uint8

const (
	codeUnknown code = iota
	codeToAnalyze
	codeGenerateLetter
	codeReady
	codeApplied
	codeRejected
)

// Status is one pipeline stage. The zero value is Unknown("").
//
// Known stages are the package-level values below; anything read from the
// remote store that does not match one of them is kept as Unknown(raw) so the
// original string survives a round trip and still renders.
type Status struct {
	code code
	raw  string
}

var (
	ToAnalyze      = Status{code: codeToAnalyze}
	GenerateLetter = Status{code: codeGenerateLetter}
	Ready          = Status{code: codeReady}
	Applied        = Status{code: codeApplied}
	Rejected       = Status{code: codeRejected}
)

// Default is the status assigned to records that carry none.
var Default = ToAnalyze

// chain is the forward pipeline. Rejected is reachable from any of these but
// is not part of it.
var chain = []Status{ToAnalyze, GenerateLetter, Ready, Applied}

// Unknown wraps a status string that is not part of the pipeline.
func Unknown(raw string) Status {
	return Status{code: codeUnknown, raw: raw}
}

// Known reports whether s is one of the pipeline stages.
func (s Status) Known() bool { return s.code != codeUnknown }

// Terminal reports whether s has no forward transition.
func (s Status) Terminal() bool { return s == Applied || s == Rejected }

// Label is the canonical spelling written back to the remote store.
func (s Status) Label() string {
	if !s.Known() {
		return s.raw
	}
	return definitions[s.code].Label
}

func (s Status) String() string { return s.Label() }

// Ordinal is the 1-based pipeline position; 0 for Unknown.
func (s Status) Ordinal() int { return s.Definition().Ordinal }

// MarshalText writes the label.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.Label()), nil }

// UnmarshalText parses with the same rules as Parse.
func (s *Status) UnmarshalText(b []byte) error {
	*s = Parse(string(b))
	return nil
}

// All returns the known statuses in ordinal order.
func All() []Status {
	return []Status{ToAnalyze, GenerateLetter, Ready, Applied, Rejected}
}

// Pipeline returns the kanban column order.
func Pipeline() []Status { return All() }

// Next returns the following stage in the forward chain. It returns false for
// Applied (end of chain), Rejected (terminal) and Unknown.
func Next(s Status) (Status, bool) {
	i := chainIndex(s)
	if i < 0 || i == len(chain)-1 {
		return Status{}, false
	}
	return chain[i+1], true
}

// Previous is the mirror of Next. It returns false for ToAnalyze, Rejected
// and Unknown.
func Previous(s Status) (Status, bool) {
	i := chainIndex(s)
	if i <= 0 {
		return Status{}, false
	}
	return chain[i-1], true
}

// CanReject reports whether Rejected is reachable from s.
func CanReject(s Status) bool {
	return s.Known() && !s.Terminal()
}

func chainIndex(s Status) int {
	for i, c := range chain {
		if c == s {
			return i
		}
	}
	return -1
}

// aliases maps folded spellings to stages. Older bases used French labels and
// were not consistent about accents ("Pret" vs "Prêt"), so lookups go through
// fold first.
var aliases = map[string]Status{
	"to analyze":            ToAnalyze,
	"to analyse":            ToAnalyze,
	"a analyser":            ToAnalyze,
	"generate cover letter": GenerateLetter,
	"generate letter":       GenerateLetter,
	"generer lm":            GenerateLetter,
	"ready":                 Ready,
	"pret":                  Ready,
	"applied":               Applied,
	"postule":               Applied,
	"rejected":              Rejected,
	"refus":                 Rejected,
	"refuse":                Rejected,
}

// Parse resolves a label from the remote store. Empty input yields Default;
// unrecognised input yields Unknown(raw).
func Parse(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Default
	}
	if s, ok := aliases[fold(trimmed)]; ok {
		return s
	}
	return Unknown(trimmed)
}

// fold lower-cases, strips diacritics and collapses inner whitespace.
// Chained transformers carry state, so one is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
