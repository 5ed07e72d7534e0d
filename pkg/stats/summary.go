package stats

import (
	"time"

	"golang.org/x/text/language"

	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// Summary is the dashboard in one value, used by the non-interactive
// renderers.
type Summary struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	KPI          KPI            `json:"kpi"`
	ByStatus     []StatusCount  `json:"by_status"`
	HighPriority []job.Record   `json:"high_priority"`
	Weekly       []WeeklyBucket `json:"weekly"`
}

// Summarize computes a Summary at now.
func Summarize(table []job.Record, now time.Time, minScore float64, locale language.Tag) Summary {
	return Summary{
		GeneratedAt:  now,
		KPI:          KPIs(table),
		ByStatus:     Breakdown(table),
		HighPriority: HighPriority(table, minScore, status.ToAnalyze),
		Weekly:       WeeklyBuckets(table, now, locale),
	}
}
