// Package job defines the typed job record and its mapping to the remote
// store's string-keyed columns.
package job

import (
	"time"

	"github.com/ssibachir/offer-crm/pkg/status"
)

// Defaults applied when the remote row does not carry a value.
const (
	DefaultTitle   = "Unspecified"
	DefaultCompany = "Unspecified"
)

// Record is one job application.
type Record struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Company         string        `json:"company"`
	Location        string        `json:"location,omitempty"`
	Description     string        `json:"description,omitempty"`
	URL             string        `json:"url,omitempty"`
	CoverLetter     string        `json:"cover_letter,omitempty"`
	Score           float64       `json:"score"`
	Status          status.Status `json:"status"`
	Contact         string        `json:"contact,omitempty"`
	ContactEmail    string        `json:"contact_email,omitempty"`
	JobBoard        string        `json:"job_board,omitempty"`
	FollowUp        string        `json:"follow_up,omitempty"`
	ApplicationDate *time.Time    `json:"application_date,omitempty"`
	ScrapedDate     *time.Time    `json:"scraped_date,omitempty"`
}

// Clone returns a deep copy; the date pointers are not shared.
func (r Record) Clone() Record {
	out := r
	out.ApplicationDate = cloneTime(r.ApplicationDate)
	out.ScrapedDate = cloneTime(r.ScrapedDate)
	return out
}

// CloneAll copies a table.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Find returns the record with the given id.
func Find(records []Record, id string) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
