package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownTarget is returned for navigation targets a pager does not know
var ErrUnknownTarget = errors.New("unexpected navigation target")

// TargetKind identifies a pager control
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetNumber
	TargetStepForward
	TargetStepBackward
	TargetFastForward
	TargetFastBackward
)

var targetNames = map[string]TargetKind{
	"step-forward":  TargetStepForward,
	"step-backward": TargetStepBackward,
	"fast-forward":  TargetFastForward,
	"fast-backward": TargetFastBackward,
	"next":          TargetStepForward,
	"prev":          TargetStepBackward,
	"last":          TargetFastForward,
	"first":         TargetFastBackward,
}

func (k TargetKind) String() string {
	switch k {
	case TargetNumber:
		return "number"
	case TargetStepForward:
		return "step-forward"
	case TargetStepBackward:
		return "step-backward"
	case TargetFastForward:
		return "fast-forward"
	case TargetFastBackward:
		return "fast-backward"
	default:
		return "none"
	}
}

// Target is a pager control the user activated
type Target struct {
	Kind TargetKind
	Page int // only for TargetNumber
}

// PageTarget jumps to a numbered page
func PageTarget(page int) Target {
	return Target{Kind: TargetNumber, Page: page}
}

// ParseTarget accepts a page number or a control name such as
// "step-forward". The "btn-" prefix used by footer markup is ignored.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "btn-")
	if n, err := strconv.Atoi(s); err == nil {
		return PageTarget(n), nil
	}
	if kind, ok := targetNames[s]; ok {
		return Target{Kind: kind}, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Resolve computes the page the target leads to from state s
func (t Target) Resolve(s State) (int, error) {
	switch t.Kind {
	case TargetNumber:
		return t.Page, nil
	case TargetStepForward:
		return s.Page + 1, nil
	case TargetStepBackward:
		return s.Page - 1, nil
	case TargetFastForward:
		return s.TotalPages, nil
	case TargetFastBackward:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownTarget, t.Kind)
	}
}
