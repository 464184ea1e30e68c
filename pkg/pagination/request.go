package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

// Request carries the pagination parameters of a list call.
// Zero values are omitted from the encoded query.
type Request struct {
	Page       int
	PageLength int
}

// Encode writes the non zero parameters into v
func (r Request) Encode(v url.Values) {
	if r.PageLength > 0 {
		v.Set(ParamPageLength, strconv.Itoa(r.PageLength))
	}
	if r.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(r.Page))
	}
}

// ParseRequest reads page and results_per_page from a query, applying
// server defaults. maxLength <= 0 falls back to MaxPageLength.
func ParseRequest(v url.Values, maxLength int) (Request, error) {
	if maxLength <= 0 {
		maxLength = MaxPageLength
	}
	r := Request{Page: 1, PageLength: DefaultPageLength}

	if raw := v.Get(ParamPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return r, fmt.Errorf("invalid %s %q: must be a positive integer", ParamPage, raw)
		}
		r.Page = page
	}

	if raw := v.Get(ParamPageLength); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return r, fmt.Errorf("invalid %s %q: must be a positive integer", ParamPageLength, raw)
		}
		r.PageLength = min(n, maxLength)
	}

	return r, nil
}
