package collection

import (
	"fmt"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/internal/types/operator"
)

// Criterion is one filter or sort rule of a remote query.
// It is a sort when Op is a sort direction.
type Criterion struct {
	Name string            `json:"name"`
	Op   operator.Operator `json:"op"`
	Val  any               `json:"val,omitempty"`
}

func (c Criterion) IsSort() bool {
	return c.Op.IsSort()
}

func (c Criterion) String() string {
	if c.IsSort() {
		return c.Name + " " + c.Op.String()
	}
	return fmt.Sprintf("%s %s %v", c.Name, c.Op, c.Val)
}

// Filter builds a filter criterion, op may be any alias or empty for eq
func Filter(name, op string, val any) (Criterion, error) {
	return NewFilter([]any{name, op, val})
}

// Sort builds a sort criterion, dir may be empty for asc
func Sort(name, dir string) (Criterion, error) {
	return NewSort([]any{name, dir})
}

// NewFilter normalizes filter shorthand into a Criterion.
//
// Accepted forms:
//
//	[]any{name, op, val}
//	[]any{name, val}            op defaults to eq
//	[]string{...}               as above
//	Criterion / *Criterion
//	map[string]any{"name": ..., "op": ..., "val": ...}
func NewFilter(shorthand any) (Criterion, error) {
	var (
		name string
		op   any
		val  any
		err  error
	)

	switch s := shorthand.(type) {
	case []any:
		switch len(s) {
		case 3:
			name, err = stringField("name", s[0])
			op, val = s[1], s[2]
		case 2:
			name, err = stringField("name", s[0])
			val = s[1]
		default:
			return Criterion{}, apperr.NewValidation(fmt.Sprintf("filter shorthand needs 2 or 3 elements, got %d", len(s)))
		}
	case []string:
		args := make([]any, len(s))
		for i, v := range s {
			args[i] = v
		}
		return NewFilter(args)
	case Criterion:
		name, op, val = s.Name, s.Op, s.Val
	case *Criterion:
		if s == nil {
			return Criterion{}, apperr.NewValidation("filter is nil")
		}
		name, op, val = s.Name, s.Op, s.Val
	case map[string]any:
		name, err = stringField("name", s["name"])
		op, val = s["op"], s["val"]
	default:
		return Criterion{}, apperr.NewValidation(fmt.Sprintf("unsupported filter shorthand %T", shorthand))
	}
	if err != nil {
		return Criterion{}, err
	}

	canonical, err := parseOp(op, operator.DefaultFilter)
	if err != nil {
		return Criterion{}, err
	}
	if canonical.IsSort() {
		return Criterion{}, apperr.NewValidation(fmt.Sprintf("filter on %q uses sort direction %q", name, canonical))
	}
	return Criterion{Name: name, Op: canonical, Val: val}, nil
}

// NewSort normalizes sort shorthand into a Criterion.
//
// Accepted forms:
//
//	"name"                      direction defaults to asc
//	[]any{name} / []any{name, dir}
//	[]string{...}               as above
//	Criterion / *Criterion
//	map[string]any{"name": ..., "op": ...}
func NewSort(shorthand any) (Criterion, error) {
	var (
		name string
		op   any
		err  error
	)

	switch s := shorthand.(type) {
	case string:
		name, err = stringField("name", s)
	case []any:
		switch len(s) {
		case 2:
			op = s[1]
			fallthrough
		case 1:
			name, err = stringField("name", s[0])
		default:
			return Criterion{}, apperr.NewValidation(fmt.Sprintf("sort shorthand needs 1 or 2 elements, got %d", len(s)))
		}
	case []string:
		args := make([]any, len(s))
		for i, v := range s {
			args[i] = v
		}
		return NewSort(args)
	case Criterion:
		name, op = s.Name, s.Op
	case *Criterion:
		if s == nil {
			return Criterion{}, apperr.NewValidation("sort is nil")
		}
		name, op = s.Name, s.Op
	case map[string]any:
		name, err = stringField("name", s["name"])
		op = s["op"]
	default:
		return Criterion{}, apperr.NewValidation(fmt.Sprintf("unsupported sort shorthand %T", shorthand))
	}
	if err != nil {
		return Criterion{}, err
	}

	canonical, err := parseOp(op, operator.DefaultSort)
	if err != nil {
		return Criterion{}, err
	}
	if !canonical.IsSort() {
		return Criterion{}, apperr.NewValidation(fmt.Sprintf("sort on %q needs asc or desc, got %q", name, canonical))
	}
	return Criterion{Name: name, Op: canonical}, nil
}

func stringField(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", apperr.NewValidation(fmt.Sprintf("criterion %s must be a non-empty string, got %v", field, v))
	}
	return s, nil
}

func parseOp(v any, def operator.Operator) (operator.Operator, error) {
	var raw string
	switch op := v.(type) {
	case nil:
	case string:
		raw = op
	case operator.Operator:
		raw = string(op)
	default:
		return "", apperr.NewValidation(fmt.Sprintf("criterion op must be a string, got %T", v))
	}

	canonical, err := operator.ParseOr(raw, def)
	if err != nil {
		return "", apperr.NewValidationWrap("invalid criterion", err)
	}
	return canonical, nil
}
