package stats

import (
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/status"
)

// Weeks is the number of buckets WeeklyBuckets returns.
const Weeks = 8

// WeeklyBucket aggregates the records scraped during one Monday-aligned week.
type WeeklyBucket struct {
	WeekStart    time.Time `json:"week_start"`
	Label        string    `json:"label"`
	Count        int       `json:"count"`
	AvgScore     float64   `json:"avg_score"`
	AppliedCount int       `json:"applied_count"`
}

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

var monthNames = map[language.Tag][12]string{
	language.English: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	language.French:  {"Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Août", "Sep", "Oct", "Nov", "Déc"},
}

// MatchLocale picks the supported locale closest to the given BCP 47 tags
// ("fr-FR", "en_US", ...). It falls back to English.
func MatchLocale(tags ...string) language.Tag {
	var parsed []language.Tag
	for _, s := range tags {
		if t, err := language.Parse(s); err == nil {
			parsed = append(parsed, t)
		}
	}
	if len(parsed) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(parsed...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// WeekLabel formats a week start as day-of-month without padding followed by
// the abbreviated month, e.g. "23 Dec" or "23 Déc".
func WeekLabel(t time.Time, locale language.Tag) string {
	names, ok := monthNames[locale]
	if !ok {
		names = monthNames[MatchLocale(locale.String())]
	}
	return strconv.Itoa(t.Day()) + " " + names[t.Month()-1]
}

// StartOfWeek returns midnight of the Monday on or before t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeeklyBuckets returns the Weeks most recent weeks ending with the one
// containing now, oldest first. A record belongs to the week whose Monday to
// Sunday range contains its scraped date; records without one are skipped.
func WeeklyBuckets(table []job.Record, now time.Time, locale language.Tag) []WeeklyBucket {
	current := StartOfWeek(now)
	buckets := make([]WeeklyBucket, Weeks)
	sums := make([]float64, Weeks)
	for i := range buckets {
		start := current.AddDate(0, 0, -7*(Weeks-1-i))
		buckets[i] = WeeklyBucket{WeekStart: start, Label: WeekLabel(start, locale)}
	}

	first := buckets[0].WeekStart
	for _, r := range table {
		if r.ScrapedDate == nil {
			continue
		}
		d := r.ScrapedDate
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(first) || day.After(current.AddDate(0, 0, 6)) {
			continue
		}
		i := int(day.Sub(first).Hours()/24+0.5) / 7
		if i < 0 || i >= Weeks {
			continue
		}
		buckets[i].Count++
		sums[i] += r.Score
		if r.Status == status.Applied {
			buckets[i].AppliedCount++
		}
	}

	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].AvgScore = sums[i] / float64(buckets[i].Count)
		}
	}
	return buckets
}
