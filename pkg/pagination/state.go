package pagination

// State describes the pagination position of a collection.
// It is derived from the last parsed response and never persisted.
type State struct {
	Page       int `json:"page"`
	PageLength int `json:"page_length,omitempty"` // 0 means the server default applies
	NumResults int `json:"num_results"`
	TotalPages int `json:"total_pages"`
}

// DisplayPage is the page a pager shows, 1 before anything was fetched
func (s State) DisplayPage() int {
	if s.Page == 0 {
		return 1
	}
	return s.Page
}

// IsLast reports whether the current page is the last known one
func (s State) IsLast() bool {
	return s.DisplayPage() >= s.TotalPages
}
