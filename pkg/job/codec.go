package job

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ssibachir/offer-crm/pkg/status"
)

// DateLayout is the layout dates are written back with.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
}

// Decode builds a record from a remote row, applying defaults and coercion.
// It never fails: malformed scores become 0 and malformed dates are absent.
func Decode(id string, fields map[string]any, cols Columns) Record {
	r := Record{
		ID:      id,
		Title:   text(fields[cols.Name(FieldTitle)]),
		Company: text(fields[cols.Name(FieldCompany)]),

		Location:     text(fields[cols.Name(FieldLocation)]),
		Description:  text(fields[cols.Name(FieldDescription)]),
		URL:          text(fields[cols.Name(FieldURL)]),
		CoverLetter:  text(fields[cols.Name(FieldCoverLetter)]),
		Contact:      text(fields[cols.Name(FieldContact)]),
		ContactEmail: text(fields[cols.Name(FieldContactEmail)]),
		JobBoard:     text(fields[cols.Name(FieldJobBoard)]),
		FollowUp:     text(fields[cols.Name(FieldFollowUp)]),

		Score:  ParseScore(fields[cols.Name(FieldScore)]),
		Status: status.Parse(text(fields[cols.Name(FieldStatus)])),

		ApplicationDate: ParseDate(fields[cols.Name(FieldApplicationDate)]),
		ScrapedDate:     ParseDate(fields[cols.Name(FieldScrapedDate)]),
	}
	if strings.TrimSpace(r.Title) == "" {
		r.Title = DefaultTitle
	}
	if strings.TrimSpace(r.Company) == "" {
		r.Company = DefaultCompany
	}
	return r
}

// ParseScore coerces a remote value to a finite score. Anything that is not
// a number or numeric string yields 0.
func ParseScore(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseDate coerces a remote value to a time. Unparsable input yields nil.
func ParseDate(v any) *time.Time {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return &x
	case *time.Time:
		if x == nil || x.IsZero() {
			return nil
		}
		t := *x
		return &t
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

// text renders any remote value as a string. Multi-value cells (lists of
// strings, as returned for linked or multi-select columns) are joined.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := text(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(DateLayout)
	case map[string]any:
		// Attachment and collaborator cells carry a display name.
		for _, k := range []string{"name", "email", "url"} {
			if s, ok := x[k].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}
