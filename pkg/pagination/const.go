package pagination

// DefaultPageLength is the page length a Restless server applies when the
// request carries no results_per_page
const DefaultPageLength = 10

// MaxPageLength is the largest results_per_page a server honours by default
const MaxPageLength = 100

// Query parameter names of the Restless list protocol
const (
	ParamPage       = "page"
	ParamPageLength = "results_per_page"
	ParamQuery      = "q"
)
