package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssibachir/offer-crm/internal/store/sqlite"
)

// isolate runs the test in an empty directory with no config or secrets
// visible from the host.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, k := range []string{
		"OFFERCRM_BACKEND", "OFFERCRM_SQLITE_PATH", "OFFERCRM_LOCALE",
		"AIRTABLE_API_KEY", "AIRTABLE_BASE_ID", "AIRTABLE_TABLE_NAME",
		"NOTION_TOKEN", "NOTION_DB_ID",
	} {
		t.Setenv(k, "")
	}
	return dir
}

// seed creates a sqlite table with two jobs and points the CLI at it.
func seed(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "jobs.db")
	ctx := context.Background()
	tbl, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, tbl.Insert(ctx, "rec1", map[string]any{
		"Title": "Backend engineer", "Company": "Acme", "Score": 9, "Status": "To Analyze",
	}))
	require.NoError(t, tbl.Insert(ctx, "rec2", map[string]any{
		"Title": "SRE", "Company": "Globex", "Score": "6,5", "Status": "Postulé",
	}))
	require.NoError(t, tbl.Close())
	t.Setenv("OFFERCRM_SQLITE_PATH", path)
}

func TestRun_PrintsVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "offercrm version")
}

func TestRun_ExitsTwo_When_CommandIsUnknown(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"explode"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), `unknown command "explode"`)
}

func TestRun_PrintsRemediation_When_AirtableSecretsAreMissing(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"summary", "--format", "json"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "AIRTABLE_API_KEY")
	assert.Contains(t, stderr.String(), "AIRTABLE_BASE_ID=appXXXXXXXX")
	assert.Empty(t, stdout.String())
}

func TestRun_PrintsJSONSummary_When_BackendIsSQLite(t *testing.T) {
	dir := isolate(t)
	seed(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"summary", "--backend", "sqlite", "--format", "json", "--log-level", "error"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out struct {
		KPI struct {
			Total          int     `json:"total"`
			AverageScore   float64 `json:"average_score"`
			ConversionRate float64 `json:"conversion_rate"`
		} `json:"kpi"`
		HighPriority []struct {
			ID string `json:"id"`
		} `json:"high_priority"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, 2, out.KPI.Total)
	assert.InDelta(t, 7.75, out.KPI.AverageScore, 0.001)
	assert.InDelta(t, 50.0, out.KPI.ConversionRate, 0.001)
	require.Len(t, out.HighPriority, 1)
	assert.Equal(t, "rec1", out.HighPriority[0].ID)
}

func TestRun_PrintsTextSummary_When_FormatIsText(t *testing.T) {
	dir := isolate(t)
	seed(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"summary", "--backend", "sqlite", "--format", "text", "--log-level", "error"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "HIGH PRIORITY")
	assert.Contains(t, stdout.String(), "Backend engineer")
}

func TestRun_Pings_When_BackendIsReachable(t *testing.T) {
	dir := isolate(t)
	seed(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"ping", "--backend", "sqlite"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "ok: sqlite reachable")
}

func TestRun_ExitsTwo_When_FormatIsUnknown(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"summary", "--format", "xml"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), `unknown format "xml"`)
}

func TestRun_ExitsTwo_When_ColumnOverrideIsUnknown(t *testing.T) {
	dir := isolate(t)
	seed(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".offercrm.yaml"), []byte("columns:\n  salary: Salary\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"summary", "--backend", "sqlite", "--format", "json"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "salary")
}
