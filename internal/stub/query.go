package stub

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/internal/types/operator"
)

// Criterion is a filter or sort as it arrives in the q parameter
type Criterion struct {
	Name string            `json:"name"`
	Op   operator.Operator `json:"op"`
	Val  any               `json:"val"`
}

// Query is the decoded q parameter
type Query struct {
	Filters []Criterion
	Sorts   []Criterion
}

// ParseQuery decodes q={"filters":[...]}. Sort directions in the list
// become sorts in the order they appear, everything else is a filter.
func ParseQuery(raw string) (*Query, error) {
	q := &Query{}
	if raw == "" {
		return q, nil
	}

	var body struct {
		Filters []Criterion `json:"filters"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, apperr.NewValidationWrap("invalid q parameter", err)
	}

	for i, c := range body.Filters {
		if c.Name == "" {
			return nil, apperr.NewValidation(fmt.Sprintf("filter %d has no name", i))
		}
		if c.Op == "" {
			c.Op = operator.DefaultFilter
		}
		if c.Op.IsSort() {
			q.Sorts = append(q.Sorts, c)
			continue
		}
		if c.Op == operator.In || c.Op == operator.NotIn {
			if _, ok := c.Val.([]any); !ok {
				return nil, apperr.NewValidation(fmt.Sprintf("filter on %q: %s needs a list value", c.Name, c.Op))
			}
		}
		q.Filters = append(q.Filters, c)
	}
	return q, nil
}

// Apply filters then sorts objects. The input slice is not modified.
func (q *Query) Apply(objects []Object) ([]Object, error) {
	out := make([]Object, 0, len(objects))
	for _, obj := range objects {
		ok, err := q.matches(obj)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, obj)
		}
	}

	if len(q.Sorts) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, s := range q.Sorts {
				c := compare(out[i][s.Name], out[j][s.Name])
				if c == 0 {
					continue
				}
				if s.Op == operator.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	return out, nil
}

func (q *Query) matches(obj Object) (bool, error) {
	for _, f := range q.Filters {
		ok, err := evaluate(f, obj)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(f Criterion, obj Object) (bool, error) {
	v := obj[f.Name]

	switch f.Op {
	case operator.Eq:
		return equal(v, f.Val), nil
	case operator.Neq:
		return !equal(v, f.Val), nil
	case operator.Gt:
		return ordered(v, f.Val, func(c int) bool { return c > 0 }), nil
	case operator.Lt:
		return ordered(v, f.Val, func(c int) bool { return c < 0 }), nil
	case operator.Gte:
		return ordered(v, f.Val, func(c int) bool { return c >= 0 }), nil
	case operator.Lte:
		return ordered(v, f.Val, func(c int) bool { return c <= 0 }), nil
	case operator.In:
		return contains(f.Val, v), nil
	case operator.NotIn:
		return !contains(f.Val, v), nil
	case operator.IsNull:
		return v == nil, nil
	case operator.IsNotNull:
		return v != nil, nil
	case operator.Like:
		return like(v, f.Val)
	case operator.Has:
		related, ok := v.(map[string]any)
		if !ok {
			return false, nil
		}
		return nested(f, related)
	case operator.Any:
		items, ok := v.([]any)
		if !ok {
			return false, nil
		}
		for _, item := range items {
			var (
				hit bool
				err error
			)
			if related, ok := item.(map[string]any); ok {
				hit, err = nested(f, related)
			} else {
				hit = equal(item, f.Val)
			}
			if err != nil || hit {
				return hit, err
			}
		}
		return false, nil
	default:
		return false, apperr.NewValidation(fmt.Sprintf("unsupported operator %q", f.Op))
	}
}

// nested evaluates a relation filter whose val is itself a {name, op, val} filter
func nested(f Criterion, related Object) (bool, error) {
	inner, ok := f.Val.(map[string]any)
	if !ok {
		return false, apperr.NewValidation(fmt.Sprintf("filter on %q: %s needs a nested filter value", f.Name, f.Op))
	}
	name, _ := inner["name"].(string)
	rawOp, _ := inner["op"].(string)
	op, err := operator.ParseOr(rawOp, operator.DefaultFilter)
	if err != nil || name == "" || op.IsSort() {
		return false, apperr.NewValidation(fmt.Sprintf("filter on %q: invalid nested filter", f.Name))
	}
	return evaluate(Criterion{Name: name, Op: op, Val: inner["val"]}, related)
}

func equal(a, b any) bool {
	if an, ok := a.(float64); ok {
		if bn, ok := b.(float64); ok {
			return an == bn
		}
	}
	return reflect.DeepEqual(a, b)
}

func contains(list any, v any) bool {
	items, ok := list.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equal(item, v) {
			return true
		}
	}
	return false
}

func ordered(a, b any, want func(int) bool) bool {
	switch a.(type) {
	case float64, string:
	default:
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return want(compare(a, b))
}

// compare orders nil first, then numbers, then strings, then booleans
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		}
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	default:
		return 4
	}
}

// like implements SQL LIKE: % matches any run, _ a single character
func like(v any, pattern any) (bool, error) {
	s, ok := v.(string)
	if !ok {
		return false, nil
	}
	p, ok := pattern.(string)
	if !ok {
		return false, apperr.NewValidation("like needs a string pattern")
	}

	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range p {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return false, apperr.NewValidationWrap("invalid like pattern", err)
	}
	return re.MatchString(s), nil
}
