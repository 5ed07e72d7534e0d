package job

import (
	"fmt"
	"time"

	"github.com/ssibachir/offer-crm/pkg/status"
)

// Changes is a partial update keyed by typed field. Build it with the setters
// so each value has the type Encode expects.
type Changes map[Field]any

// SetText sets a text-valued field.
func (c Changes) SetText(f Field, v string) Changes {
	c[f] = v
	return c
}

// SetStatus sets the status field.
func (c Changes) SetStatus(s status.Status) Changes {
	c[FieldStatus] = s
	return c
}

// SetScore sets the score field.
func (c Changes) SetScore(v float64) Changes {
	c[FieldScore] = v
	return c
}

// SetDate sets a date field; nil clears it.
func (c Changes) SetDate(f Field, t *time.Time) Changes {
	if t == nil {
		c[f] = nil
		return c
	}
	c[f] = *t
	return c
}

// Fields lists the config keys touched, in field table order. Used in log
// attributes.
func (c Changes) Fields() []string {
	out := make([]string, 0, len(c))
	for _, s := range Fields {
		if _, ok := c[s.Field]; ok {
			out = append(out, s.Key)
		}
	}
	return out
}

// Encode serialises the changes into remote column names.
func (c Changes) Encode(cols Columns) (map[string]any, error) {
	out := make(map[string]any, len(c))
	for f, v := range c {
		spec, ok := f.Spec()
		if !ok {
			return nil, fmt.Errorf("encode: unknown field %d", int(f))
		}
		enc, err := encodeValue(spec, v)
		if err != nil {
			return nil, err
		}
		out[cols.Name(f)] = enc
	}
	return out, nil
}

func encodeValue(spec FieldSpec, v any) (any, error) {
	switch spec.Kind {
	case KindStatus:
		switch x := v.(type) {
		case status.Status:
			return x.Label(), nil
		case string:
			return status.Parse(x).Label(), nil
		}
	case KindNumber:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		}
	case KindDate:
		switch x := v.(type) {
		case nil:
			return nil, nil
		case time.Time:
			return x.Format(DateLayout), nil
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("encode %s: unexpected %T for %s column", spec.Key, v, spec.Kind)
}
