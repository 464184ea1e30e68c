package stub

import (
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/restless-collections/internal/apperr"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// ListRouter serves Restless list endpoints from a Store
type ListRouter struct {
	e             *echo.Echo
	store         *Store
	prefix        string
	maxPageLength int
}

type ListRouterOption func(*ListRouter)

// WithPrefix mounts the resources under prefix, "/api" by default
func WithPrefix(prefix string) ListRouterOption {
	return func(r *ListRouter) {
		r.prefix = prefix
	}
}

// WithMaxPageLength caps results_per_page
func WithMaxPageLength(n int) ListRouterOption {
	return func(r *ListRouter) {
		r.maxPageLength = n
	}
}

func NewListRouter(e *echo.Echo, store *Store, opts ...ListRouterOption) *ListRouter {
	r := &ListRouter{
		e:             e,
		store:         store,
		prefix:        "/api",
		maxPageLength: pagination.MaxPageLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ListRouter) Bind() {
	r.e.GET(r.prefix, r.resourcesHandler)
	r.e.GET(r.prefix+"/:resource", r.listHandler)
}

func (r *ListRouter) resourcesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"resources": r.store.Resources()})
}

func (r *ListRouter) listHandler(c echo.Context) error {
	resource := c.Param("resource")
	objects, ok := r.store.List(resource)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no such resource: "+resource)
	}

	params := c.QueryParams()
	req, err := pagination.ParseRequest(params, r.maxPageLength)
	if err != nil {
		return apperr.NewValidationWrap("invalid pagination", err)
	}

	q, err := ParseQuery(params.Get(pagination.ParamQuery))
	if err != nil {
		return err
	}
	matched, err := q.Apply(objects)
	if err != nil {
		return err
	}

	start, end := pagination.Window(len(matched), req.Page, req.PageLength)
	env := pagination.NewEnvelope(matched[start:end], len(matched), req.Page, req.PageLength)

	slog.Debug("Listed resource",
		"resource", resource,
		"page", req.Page,
		"filters", len(q.Filters),
		"sorts", len(q.Sorts),
		"num_results", len(matched),
	)
	return c.JSON(http.StatusOK, env)
}
