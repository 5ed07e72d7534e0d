// Package stats derives dashboard projections from a table snapshot.
//
// Every function is pure: inputs are never mutated and an empty table yields
// zero values rather than an error.
package stats

import (
	"sort"

	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// Thresholds shared by the dashboard and the inbox.
const (
	HighScore       = 8.0
	MediumScore     = 5.0
	HighPriorityCap = 5
)

// CountByStatus counts records with status s.
func CountByStatus(table []job.Record, s status.Status) int {
	n := 0
	for _, r := range table {
		if r.Status == s {
			n++
		}
	}
	return n
}

// HighPriority returns up to HighPriorityCap records with the given status
// and a score of at least minScore, best first. Ties keep table order.
func HighPriority(table []job.Record, minScore float64, filter status.Status) []job.Record {
	var out []job.Record
	for _, r := range table {
		if r.Status == filter && r.Score >= minScore {
			out = append(out, r.Clone())
		}
	}
	sortByScore(out)
	if len(out) > HighPriorityCap {
		out = out[:HighPriorityCap]
	}
	return out
}

// AverageScore is the mean score, 0 for an empty table.
func AverageScore(table []job.Record) float64 {
	if len(table) == 0 {
		return 0
	}
	var sum float64
	for _, r := range table {
		sum += r.Score
	}
	return sum / float64(len(table))
}

// ConversionRate is the percentage of records that reached Applied.
func ConversionRate(table []job.Record) float64 {
	if len(table) == 0 {
		return 0
	}
	return float64(CountByStatus(table, status.Applied)) / float64(len(table)) * 100
}

// KPI is the headline numbers for the dashboard and sidebar.
type KPI struct {
	Total          int                   `json:"total"`
	ByStatus       map[status.Status]int `json:"-"`
	AverageScore   float64               `json:"average_score"`
	HighScoreCount int                   `json:"high_score_count"`
	ConversionRate float64               `json:"conversion_rate"`
}

// Count returns the number of records in s.
func (k KPI) Count(s status.Status) int { return k.ByStatus[s] }

// Progress is applied/total in [0,1], for progress bars.
func (k KPI) Progress() float64 {
	if k.Total == 0 {
		return 0
	}
	return float64(k.ByStatus[status.Applied]) / float64(k.Total)
}

// KPIs computes the headline numbers.
func KPIs(table []job.Record) KPI {
	k := KPI{
		Total:          len(table),
		ByStatus:       make(map[status.Status]int, len(status.All())),
		AverageScore:   AverageScore(table),
		ConversionRate: ConversionRate(table),
	}
	for _, r := range table {
		k.ByStatus[r.Status]++
		if r.Score >= HighScore {
			k.HighScoreCount++
		}
	}
	return k
}

// StatusCount is one slice of the status breakdown.
type StatusCount struct {
	Status status.Status `json:"status"`
	Count  int           `json:"count"`
}

// Breakdown counts records per pipeline status, in pipeline order, omitting
// empty statuses. Unknown statuses are not part of the breakdown.
func Breakdown(table []job.Record) []StatusCount {
	var out []StatusCount
	for _, s := range status.Pipeline() {
		if n := CountByStatus(table, s); n > 0 {
			out = append(out, StatusCount{Status: s, Count: n})
		}
	}
	return out
}

// InboxView is the triage list and its header numbers.
type InboxView struct {
	Records      []job.Record
	Pending      int
	HighScore    int
	AverageScore float64
}

// Inbox lists the records awaiting analysis with a score of at least
// minScore, best first. The header numbers ignore the filter.
func Inbox(table []job.Record, minScore float64) InboxView {
	var pending []job.Record
	for _, r := range table {
		if r.Status == status.ToAnalyze {
			pending = append(pending, r)
		}
	}
	v := InboxView{
		Pending:      len(pending),
		AverageScore: AverageScore(pending),
	}
	for _, r := range pending {
		if r.Score >= HighScore {
			v.HighScore++
		}
		if r.Score >= minScore {
			v.Records = append(v.Records, r.Clone())
		}
	}
	sortByScore(v.Records)
	return v
}

// Column returns the kanban column for s, best first.
func Column(table []job.Record, s status.Status) []job.Record {
	var out []job.Record
	for _, r := range table {
		if r.Status == s {
			out = append(out, r.Clone())
		}
	}
	sortByScore(out)
	return out
}

// Band classifies a score for badge colours.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	default:
		return "low"
	}
}

// ScoreBand returns the band of score.
func ScoreBand(score float64) Band {
	switch {
	case score >= HighScore:
		return BandHigh
	case score >= MediumScore:
		return BandMedium
	default:
		return BandLow
	}
}

func sortByScore(records []job.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
}
