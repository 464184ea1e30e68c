package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/restless-collections/internal/transport"
)

type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type cliConfig struct {
	URL        string
	EnvPath    string
	Resource   string
	Kind       string
	PageLength int
	Pages      int
	Goto       string
	SchemaPath string
	XSRFToken  string
	RPS        float64
	Timeout    time.Duration
	Filters    listFlag
	Sorts      listFlag
}

func parseFlags(args []string) (cliConfig, error) {
	cfg := cliConfig{}
	fs := flag.NewFlagSet("restless_browse", flag.ContinueOnError)

	fs.StringVar(&cfg.URL, "url", "", "API base URL, e.g. http://localhost:8080/api (falls back to RESTLESS_BASE_URL)")
	fs.StringVar(&cfg.EnvPath, "env", ".env", "Path to .env file read when -url is empty")
	fs.StringVar(&cfg.Resource, "resource", "", "Collection resource name, e.g. books")
	fs.StringVar(&cfg.Kind, "kind", "paged", "Collection kind: paged or filtered")
	fs.IntVar(&cfg.PageLength, "page-length", 0, "results_per_page sent with every fetch (0 = server default)")
	fs.IntVar(&cfg.Pages, "pages", 0, "Maximum number of pages to fetch (0 = all)")
	fs.StringVar(&cfg.Goto, "goto", "", "Jump to a page after the first fetch: a number, next, prev, first or last")
	fs.StringVar(&cfg.SchemaPath, "schema", "", "Record schema YAML used to coerce dates and numbers")
	fs.StringVar(&cfg.XSRFToken, "xsrf", "", "XSRF token sent as "+transport.XSRFHeader)
	fs.Float64Var(&cfg.RPS, "rps", 0, "Client side request rate limit (0 = off)")
	fs.DurationVar(&cfg.Timeout, "timeout", transport.DefaultTimeout, "HTTP request timeout")
	fs.Var(&cfg.Filters, "filter", "Filter as name:op:value or name:value, repeatable (filtered kind)")
	fs.Var(&cfg.Sorts, "sort", "Sort as name or name:dir, repeatable (filtered kind)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Resource == "" {
		return cfg, errors.New("-resource is required")
	}
	if cfg.Kind == "paged" && (len(cfg.Filters) > 0 || len(cfg.Sorts) > 0) {
		return cfg, errors.New("-filter and -sort need -kind filtered")
	}
	return cfg, nil
}

// transportConfig prefers flags and falls back to RESTLESS_* variables
func (c cliConfig) transportConfig() (*transport.Config, error) {
	if c.URL == "" {
		return transport.LoadConfig(c.EnvPath)
	}
	tc := &transport.Config{
		BaseURL:           strings.TrimRight(c.URL, "/"),
		XSRFToken:         c.XSRFToken,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RPS,
	}
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// parseFilterFlag turns name:op:value or name:value into filter shorthand.
// Values that parse as JSON keep their type, anything else is a string.
func parseFilterFlag(raw string) ([]any, error) {
	parts := strings.SplitN(raw, ":", 3)
	switch len(parts) {
	case 2:
		return []any{parts[0], flagValue(parts[1])}, nil
	case 3:
		return []any{parts[0], parts[1], flagValue(parts[2])}, nil
	default:
		return nil, fmt.Errorf("invalid filter %q: want name:op:value or name:value", raw)
	}
}

// parseSortFlag turns name or name:dir into sort shorthand
func parseSortFlag(raw string) []any {
	name, dir, found := strings.Cut(raw, ":")
	if !found {
		return []any{name}
	}
	return []any{name, dir}
}

func flagValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
