package notion

import (
	"fmt"
	"sort"
	"strings"
	"time"

	gnt "github.com/dstotijn/go-notion"
)

// maxRichText is the per-object content limit of the Notion API.
const maxRichText = 2000

// Flatten turns page properties into plain cell values keyed by property
// name. Properties without a usable value are omitted.
func Flatten(props gnt.DatabasePageProperties) map[string]any {
	out := make(map[string]any, len(props))
	for name, p := range props {
		if v, ok := flattenOne(p); ok {
			out[name] = v
		}
	}
	return out
}

func flattenOne(p gnt.DatabasePageProperty) (any, bool) {
	switch p.Type {
	case gnt.DBPropTypeTitle:
		return plain(p.Title), true
	case gnt.DBPropTypeRichText:
		return plain(p.RichText), true
	case gnt.DBPropTypeNumber:
		if p.Number == nil {
			return nil, false
		}
		return *p.Number, true
	case gnt.DBPropTypeSelect:
		if p.Select == nil {
			return nil, false
		}
		return p.Select.Name, true
	case gnt.DBPropTypeStatus:
		if p.Status == nil {
			return nil, false
		}
		return p.Status.Name, true
	case gnt.DBPropTypeMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, o := range p.MultiSelect {
			names = append(names, o.Name)
		}
		return strings.Join(names, ", "), true
	case gnt.DBPropTypeDate:
		if p.Date == nil {
			return nil, false
		}
		return p.Date.Start.Time, true
	case gnt.DBPropTypeURL:
		if p.URL == nil {
			return nil, false
		}
		return *p.URL, true
	case gnt.DBPropTypeEmail:
		if p.Email == nil {
			return nil, false
		}
		return *p.Email, true
	case gnt.DBPropTypePhoneNumber:
		if p.PhoneNumber == nil {
			return nil, false
		}
		return *p.PhoneNumber, true
	}
	return nil, false
}

func plain(rt []gnt.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		if r.PlainText != "" {
			b.WriteString(r.PlainText)
		} else if r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

// richText splits s into objects under the API's content limit, cutting on
// rune boundaries.
func richText(s string) []gnt.RichText {
	if s == "" {
		return []gnt.RichText{}
	}
	var out []gnt.RichText
	runes := []rune(s)
	for len(runes) > 0 {
		n := min(len(runes), maxRichText)
		out = append(out, gnt.RichText{Text: &gnt.Text{Content: string(runes[:n])}})
		runes = runes[n:]
	}
	return out
}

// Build converts cell values into page properties using the database schema
// to pick each property's shape.
func Build(schema map[string]gnt.DatabasePropertyType, fields map[string]any) (gnt.DatabasePageProperties, error) {
	props := make(gnt.DatabasePageProperties, len(fields))
	var missing []string
	for name, v := range fields {
		typ, ok := schema[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		p, err := buildOne(typ, v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		props[name] = p
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("properties not in database: %s", strings.Join(missing, ", "))
	}
	return props, nil
}

func buildOne(typ gnt.DatabasePropertyType, v any) (gnt.DatabasePageProperty, error) {
	s, isString := v.(string)
	switch typ {
	case gnt.DBPropTypeTitle:
		if isString {
			return gnt.DatabasePageProperty{Title: richText(s)}, nil
		}
	case gnt.DBPropTypeRichText:
		if isString {
			return gnt.DatabasePageProperty{RichText: richText(s)}, nil
		}
	case gnt.DBPropTypeNumber:
		if f, ok := v.(float64); ok {
			return gnt.DatabasePageProperty{Number: &f}, nil
		}
	case gnt.DBPropTypeSelect:
		if isString {
			return gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: s}}, nil
		}
	case gnt.DBPropTypeStatus:
		if isString {
			return gnt.DatabasePageProperty{Status: &gnt.SelectOptions{Name: s}}, nil
		}
	case gnt.DBPropTypeURL:
		if isString {
			return gnt.DatabasePageProperty{URL: optional(s)}, nil
		}
	case gnt.DBPropTypeEmail:
		if isString {
			return gnt.DatabasePageProperty{Email: optional(s)}, nil
		}
	case gnt.DBPropTypePhoneNumber:
		if isString {
			return gnt.DatabasePageProperty{PhoneNumber: optional(s)}, nil
		}
	case gnt.DBPropTypeDate:
		if v == nil {
			return gnt.DatabasePageProperty{Type: gnt.DBPropTypeDate}, nil
		}
		if isString {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return gnt.DatabasePageProperty{}, err
			}
			return gnt.DatabasePageProperty{Date: &gnt.Date{Start: gnt.NewDateTime(t, false)}}, nil
		}
	default:
		return gnt.DatabasePageProperty{}, fmt.Errorf("unsupported property type %s", typ)
	}
	return gnt.DatabasePageProperty{}, fmt.Errorf("cannot write %T to %s property", v, typ)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
