package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/status"
)

func rec(id string, score float64, s status.Status) job.Record {
	return job.Record{ID: id, Title: id, Company: "Co", Score: score, Status: s}
}

func scraped(r job.Record, y int, m time.Month, d int) job.Record {
	t := time.Date(y, m, d, 14, 0, 0, 0, time.UTC)
	r.ScrapedDate = &t
	return r
}

func ids(records []job.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestHighPriority_ReturnsOnlyMatchingStatusAboveThreshold(t *testing.T) {
	t.Parallel()

	table := []job.Record{
		rec("A", 9, status.ToAnalyze),
		rec("B", 3, status.ToAnalyze),
		rec("C", 9, status.Applied),
	}

	got := HighPriority(table, HighScore, status.ToAnalyze)
	assert.Equal(t, []string{"A"}, ids(got))
}

func TestHighPriority_CapsAndSortsDescending_When_ManyRecordsQualify(t *testing.T) {
	t.Parallel()

	table := []job.Record{
		rec("a", 8, status.ToAnalyze),
		rec("b", 9.5, status.ToAnalyze),
		rec("c", 8.5, status.ToAnalyze),
		rec("d", 10, status.ToAnalyze),
		rec("e", 8, status.ToAnalyze),
		rec("f", 9, status.ToAnalyze),
		rec("g", 7.9, status.ToAnalyze),
	}

	got := HighPriority(table, HighScore, status.ToAnalyze)
	require.Len(t, got, HighPriorityCap)
	assert.Equal(t, []string{"d", "b", "f", "c", "a"}, ids(got))
	for _, r := range got {
		assert.GreaterOrEqual(t, r.Score, HighScore)
	}
}

func TestAggregations_ReturnZeroValues_When_TableIsEmpty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, AverageScore(nil))
	assert.Zero(t, ConversionRate(nil))
	assert.Zero(t, CountByStatus(nil, status.Applied))
	assert.Empty(t, HighPriority(nil, HighScore, status.ToAnalyze))
	assert.Empty(t, Breakdown(nil))

	k := KPIs(nil)
	assert.Zero(t, k.Total)
	assert.Zero(t, k.Progress())

	v := Inbox(nil, 0)
	assert.Zero(t, v.Pending)
	assert.Empty(t, v.Records)

	buckets := WeeklyBuckets(nil, time.Now(), language.English)
	assert.Len(t, buckets, Weeks)
}

func TestConversionRate_IsAppliedShareInPercent(t *testing.T) {
	t.Parallel()

	table := []job.Record{
		rec("a", 1, status.Applied),
		rec("b", 2, status.ToAnalyze),
		rec("c", 3, status.Rejected),
		rec("d", 4, status.Ready),
	}
	assert.InDelta(t, 25.0, ConversionRate(table), 1e-9)
	assert.InDelta(t, 2.5, AverageScore(table), 1e-9)
}

func TestAggregations_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	table := []job.Record{rec("low", 1, status.ToAnalyze), rec("high", 9, status.ToAnalyze)}
	_ = HighPriority(table, 0, status.ToAnalyze)
	_ = Inbox(table, 0)
	_ = Column(table, status.ToAnalyze)

	assert.Equal(t, []string{"low", "high"}, ids(table))
}

func TestKPIs_CountsPerStatusAndHighScores(t *testing.T) {
	t.Parallel()

	table := []job.Record{
		rec("a", 9, status.ToAnalyze),
		rec("b", 8, status.Applied),
		rec("c", 2, status.Applied),
		rec("d", 5, status.Unknown("Interview")),
	}

	k := KPIs(table)
	assert.Equal(t, 4, k.Total)
	assert.Equal(t, 1, k.Count(status.ToAnalyze))
	assert.Equal(t, 2, k.Count(status.Applied))
	assert.Equal(t, 1, k.Count(status.Unknown("Interview")))
	assert.Equal(t, 2, k.HighScoreCount)
	assert.InDelta(t, 0.5, k.Progress(), 1e-9)
}

func TestBreakdown_FollowsPipelineOrderAndOmitsEmpty(t *testing.T) {
	t.Parallel()

	table := []job.Record{
		rec("a", 1, status.Rejected),
		rec("b", 1, status.ToAnalyze),
		rec("c", 1, status.ToAnalyze),
		rec("d", 1, status.Unknown("Interview")),
	}

	assert.Equal(t, []StatusCount{
		{Status: status.ToAnalyze, Count: 2},
		{Status: status.Rejected, Count: 1},
	}, Breakdown(table))
}

func TestInbox_FiltersByMinimumScore_When_HeaderIgnoresFilter(t *testing.T) {
	t.Parallel()

	table := []job.Record{
		rec("a", 4, status.ToAnalyze),
		rec("b", 9, status.ToAnalyze),
		rec("c", 6, status.ToAnalyze),
		rec("d", 10, status.Ready),
	}

	v := Inbox(table, 5)
	assert.Equal(t, []string{"b", "c"}, ids(v.Records))
	assert.Equal(t, 3, v.Pending)
	assert.Equal(t, 1, v.HighScore)
	assert.InDelta(t, 19.0/3, v.AverageScore, 1e-9)
}

func TestScoreBand_UsesThresholds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BandHigh, ScoreBand(8))
	assert.Equal(t, BandMedium, ScoreBand(7.99))
	assert.Equal(t, BandMedium, ScoreBand(5))
	assert.Equal(t, BandLow, ScoreBand(4.9))
}

func TestWeeklyBuckets_ReturnsEightMondayAlignedWeeksOldestFirst(t *testing.T) {
	t.Parallel()

	// Wednesday.
	now := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)

	buckets := WeeklyBuckets(nil, now, language.English)
	require.Len(t, buckets, Weeks)
	assert.Equal(t, time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC), buckets[0].WeekStart)
	assert.Equal(t, time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC), buckets[7].WeekStart)
	assert.Equal(t, "4 Nov", buckets[0].Label)
	assert.Equal(t, "23 Dec", buckets[7].Label)
	for i, b := range buckets {
		assert.Equal(t, time.Monday, b.WeekStart.Weekday())
		if i > 0 {
			assert.Equal(t, buckets[i-1].WeekStart.AddDate(0, 0, 7), b.WeekStart)
		}
	}
}

func TestWeeklyBuckets_AssignsRecordsByScrapedDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	table := []job.Record{
		scraped(rec("mon", 8, status.Applied), 2024, 12, 23),
		scraped(rec("sun", 6, status.ToAnalyze), 2024, 12, 29),
		scraped(rec("prev-sun", 4, status.ToAnalyze), 2024, 12, 22),
		scraped(rec("oldest", 2, status.Applied), 2024, 11, 4),
		scraped(rec("too-old", 9, status.Applied), 2024, 11, 3),
		rec("undated", 10, status.Applied),
	}

	buckets := WeeklyBuckets(table, now, language.English)

	assert.Equal(t, 2, buckets[7].Count)
	assert.InDelta(t, 7.0, buckets[7].AvgScore, 1e-9)
	assert.Equal(t, 1, buckets[7].AppliedCount)

	assert.Equal(t, 1, buckets[6].Count)
	assert.InDelta(t, 4.0, buckets[6].AvgScore, 1e-9)

	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[0].AppliedCount)

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 4, total)
}

func TestWeeklyBuckets_UsesFrenchMonthNames_When_LocaleIsFrench(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC)
	buckets := WeeklyBuckets(nil, now, MatchLocale("fr-FR"))

	assert.Equal(t, "3 Fév", buckets[7].Label)
	assert.Equal(t, "16 Déc", buckets[0].Label)
}

func TestMatchLocale_FallsBackToEnglish(t *testing.T) {
	t.Parallel()

	assert.Equal(t, language.English, MatchLocale())
	assert.Equal(t, language.English, MatchLocale("not a tag!"))
	assert.Equal(t, language.French, MatchLocale("fr"))
	assert.Equal(t, language.English, MatchLocale("en-GB"))
}

func TestSummarize_CombinesProjections(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	table := []job.Record{scraped(rec("a", 9, status.ToAnalyze), 2024, 12, 24)}

	s := Summarize(table, now, HighScore, language.English)
	assert.Equal(t, 1, s.KPI.Total)
	assert.Equal(t, []string{"a"}, ids(s.HighPriority))
	assert.Len(t, s.Weekly, Weeks)
	assert.Equal(t, 1, s.Weekly[7].Count)
	assert.Equal(t, now, s.GeneratedAt)
}
