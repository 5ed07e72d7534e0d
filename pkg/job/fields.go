package job

import (
	"fmt"
	"sort"
)

// Field identifies a typed record field that maps to a remote column.
type Field int

const (
	FieldTitle Field = iota + 1
	FieldCompany
	FieldLocation
	FieldURL
	FieldDescription
	FieldApplicationDate
	FieldCoverLetter
	FieldScore
	FieldStatus
	FieldContact
	FieldFollowUp
	FieldJobBoard
	FieldContactEmail
	FieldScrapedDate
)

// Kind is the value family of a column; backends use it to pick a property
// shape when writing.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindStatus
	KindDate
	KindURL
	KindEmail
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindStatus:
		return "status"
	case KindDate:
		return "date"
	case KindURL:
		return "url"
	case KindEmail:
		return "email"
	default:
		return "text"
	}
}

// FieldSpec is one row of the static field table.
type FieldSpec struct {
	Field  Field
	Key    string // stable config key, used in columns overrides
	Column string // default remote column name
	Kind   Kind
}

// Fields is the external schema in display order.
var Fields = []FieldSpec{
	{FieldTitle, "title", "Title", KindText},
	{FieldCompany, "company", "Company", KindText},
	{FieldLocation, "location", "Location", KindText},
	{FieldURL, "url", "URL", KindURL},
	{FieldDescription, "description", "Description", KindText},
	{FieldApplicationDate, "application_date", "Application Date", KindDate},
	{FieldCoverLetter, "cover_letter", "Cover Letter", KindText},
	{FieldScore, "score", "Score", KindNumber},
	{FieldStatus, "status", "Status", KindStatus},
	{FieldContact, "contact", "Contact", KindText},
	{FieldFollowUp, "follow_up", "Follow Up", KindText},
	{FieldJobBoard, "job_board", "Job Board", KindText},
	{FieldContactEmail, "contact_email", "Contact Email", KindEmail},
	{FieldScrapedDate, "scraped_date", "Scraped Date", KindDate},
}

// Spec returns the field table entry for f.
func (f Field) Spec() (FieldSpec, bool) {
	for _, s := range Fields {
		if s.Field == f {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Key is the config key of f.
func (f Field) Key() string {
	if s, ok := f.Spec(); ok {
		return s.Key
	}
	return fmt.Sprintf("field(%d)", int(f))
}

func (f Field) String() string { return f.Key() }

// Kind is the value family of f.
func (f Field) Kind() Kind {
	s, _ := f.Spec()
	return s.Kind
}

// FieldByKey resolves a config key such as "cover_letter".
func FieldByKey(key string) (Field, bool) {
	for _, s := range Fields {
		if s.Key == key {
			return s.Field, true
		}
	}
	return 0, false
}

// Columns maps fields to remote column names. The zero value uses the
// default names.
type Columns struct {
	names map[Field]string
}

// DefaultColumns uses the canonical column names.
func DefaultColumns() Columns { return Columns{} }

// NewColumns applies overrides keyed by field key ("title", "score", ...).
// Unknown keys are an error so a typo in the config file is not silently
// ignored.
func NewColumns(overrides map[string]string) (Columns, error) {
	c := Columns{names: make(map[Field]string, len(overrides))}
	var unknown []string
	for key, name := range overrides {
		f, ok := FieldByKey(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if name != "" {
			c.names[f] = name
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Columns{}, fmt.Errorf("unknown column keys: %v", unknown)
	}
	return c, nil
}

// Name returns the remote column for f.
func (c Columns) Name(f Field) string {
	if n, ok := c.names[f]; ok {
		return n
	}
	s, _ := f.Spec()
	return s.Column
}

// Kinds returns the remote column name to kind mapping.
func (c Columns) Kinds() map[string]Kind {
	out := make(map[string]Kind, len(Fields))
	for _, s := range Fields {
		out[c.Name(s.Field)] = s.Kind
	}
	return out
}
