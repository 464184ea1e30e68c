package record

import (
	"fmt"
	"strconv"
	"time"
)

// StrKey is the attribute a server fills with the display name of a record
const StrKey = "__str__"

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Record is one decoded object of a Restless collection
type Record map[string]any

func (r Record) ID() any {
	return r["id"]
}

// String returns the server provided display name when there is one
func (r Record) String() string {
	if s, ok := r[StrKey].(string); ok && s != "" {
		return s
	}
	if id := r.ID(); id != nil {
		return fmt.Sprintf("[record %v]", id)
	}
	return "[record]"
}

// Coerce returns a copy of r with datetime attributes parsed into time.Time
// and numeric text parsed into float64. Missing and null attributes stay as they are.
func (s *Schema) Coerce(r Record) (Record, error) {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}

	for _, name := range s.DatetimeFields() {
		v, ok := out[name]
		if !ok || v == nil {
			continue
		}
		t, err := parseDatetime(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = t
	}

	for name := range s.Fields {
		if !s.IsNumeric(name) {
			continue
		}
		raw, ok := out[name].(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = n
	}

	return out, nil
}

func parseDatetime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case string:
		for _, layout := range datetimeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised datetime %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported datetime value %T", v)
	}
}
