package pagination

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Envelope is the JSON body of a Restless list response:
//
//	{"objects": [...], "num_results": 42, "page": 2, "total_pages": 5}
//
// Objects is nil when the key is absent or null, which clients treat as an
// empty terminal page. Counters are pointers so "absent" and 0 differ.
type Envelope[T any] struct {
	Objects    []T  `json:"objects"`
	NumResults *int `json:"num_results,omitempty"`
	Page       *int `json:"page,omitempty"`
	TotalPages *int `json:"total_pages,omitempty"`
}

// DecodeEnvelope reads a single envelope from r
func DecodeEnvelope[T any](r io.Reader) (*Envelope[T], error) {
	var env Envelope[T]
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return &env, nil
		}
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return &env, nil
}

// NewEnvelope builds the server side envelope for one page of a result set.
// objects must already be sliced to the requested page.
func NewEnvelope[T any](objects []T, numResults, page, pageLength int) *Envelope[T] {
	if objects == nil {
		objects = []T{}
	}
	totalPages := 0
	if pageLength > 0 {
		totalPages = (numResults + pageLength - 1) / pageLength
	}

	return &Envelope[T]{
		Objects:    objects,
		NumResults: &numResults,
		Page:       &page,
		TotalPages: &totalPages,
	}
}

// Window returns the bounds of page inside a result set of total items.
// Pages past the end yield an empty window.
func Window(total, page, pageLength int) (start, end int) {
	if page < 1 || pageLength < 1 {
		return 0, 0
	}
	// compared before multiplying so huge pages cannot overflow
	if page-1 > total/pageLength {
		return total, total
	}
	start = (page - 1) * pageLength
	if start > total {
		return total, total
	}
	end = total
	if pageLength < total-start {
		end = start + pageLength
	}
	return start, end
}
