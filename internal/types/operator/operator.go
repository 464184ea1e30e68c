package operator

import (
	"fmt"
	"strings"
)

// Operator is a Restless filter or sort operator
// Value object: the canonical name is what gets sent to the server
//
// Usage:
//
//	op, err := operator.Parse("==") // operator.Eq
//	op.IsSort()                     // false
type Operator string

const (
	Eq        Operator = "eq"
	Neq       Operator = "neq"
	Gt        Operator = "gt"
	Lt        Operator = "lt"
	Gte       Operator = "gte"
	Lte       Operator = "lte"
	In        Operator = "in"
	NotIn     Operator = "not_in"
	IsNull    Operator = "is_null"
	IsNotNull Operator = "is_not_null"
	Like      Operator = "like"
	Has       Operator = "has"
	Any       Operator = "any"

	// Asc and Desc are sort directions, they share the op slot of a criterion
	Asc  Operator = "asc"
	Desc Operator = "desc"
)

// DefaultFilter is used when a filter criterion has no operator
const DefaultFilter = Eq

// DefaultSort is used when a sort criterion has no direction
const DefaultSort = Asc

var aliases = map[string]Operator{
	"==":             Eq,
	"eq":             Eq,
	"equals":         Eq,
	"equals_to":      Eq,
	"!=":             Neq,
	"ne":             Neq,
	"neq":            Neq,
	"does_not_equal": Neq,
	"not_equal_to":   Neq,
	">":              Gt,
	"gt":             Gt,
	"<":              Lt,
	"lt":             Lt,
	">=":             Gte,
	"ge":             Gte,
	"gte":            Gte,
	"geq":            Gte,
	"<=":             Lte,
	"le":             Lte,
	"lte":            Lte,
	"leq":            Lte,
	"in":             In,
	"element_of":     In,
	"not_in":         NotIn,
	"not_element_of": NotIn,
	"is_null":        IsNull,
	"is_not_null":    IsNotNull,
	"like":           Like,
	"has":            Has,
	"any":            Any,
	"asc":            Asc,
	"desc":           Desc,
}

// Parse resolves a symbolic name or alias to its canonical operator.
// An empty string yields an empty operator so callers can apply their own default.
func Parse(s string) (Operator, error) {
	if s == "" {
		return "", nil
	}

	op, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("invalid operator: %q", s)
	}
	return op, nil
}

// ParseOr is Parse with a fallback for empty input
func ParseOr(s string, def Operator) (Operator, error) {
	op, err := Parse(s)
	if err != nil {
		return "", err
	}
	if op == "" {
		return def, nil
	}
	return op, nil
}

// Aliases returns every accepted spelling of op, canonical name included
func Aliases(op Operator) []string {
	var out []string
	for alias, target := range aliases {
		if target == op {
			out = append(out, alias)
		}
	}
	return out
}

// String returns the string representation of the operator
func (o Operator) String() string {
	return string(o)
}

// IsSort returns true for sort directions
func (o Operator) IsSort() bool {
	return o == Asc || o == Desc
}

// IsUnary returns true for operators that take no value
func (o Operator) IsUnary() bool {
	return o == IsNull || o == IsNotNull
}

// Validate ensures the operator is canonical
func (o Operator) Validate() error {
	if target, ok := aliases[string(o)]; !ok || target != o {
		return fmt.Errorf("invalid operator: %q", string(o))
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler for JSON serialization
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON deserialization
func (o *Operator) UnmarshalText(text []byte) error {
	op, err := Parse(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
