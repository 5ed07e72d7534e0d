package render

import (
	"encoding/json"
	"time"

	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/stats"
)

// JSON renders the summary as structured JSON for scripts.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	Version      string               `json:"version"`
	GeneratedAt  time.Time            `json:"generated_at"`
	KPI          stats.KPI            `json:"kpi"`
	ByStatus     []stats.StatusCount  `json:"by_status"`
	HighPriority []job.Record         `json:"high_priority"`
	Weekly       []stats.WeeklyBucket `json:"weekly"`
}

// Render formats the summary as indented JSON. Empty lists encode as [].
func (j *JSON) Render(s stats.Summary) string {
	out := jsonOutput{
		Version:      "1",
		GeneratedAt:  s.GeneratedAt,
		KPI:          s.KPI,
		ByStatus:     nonNil(s.ByStatus),
		HighPriority: nonNil(s.HighPriority),
		Weekly:       nonNil(s.Weekly),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
