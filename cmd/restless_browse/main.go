package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/DjordjeVuckovic/restless-collections/internal/collection"
	"github.com/DjordjeVuckovic/restless-collections/internal/record"
	"github.com/DjordjeVuckovic/restless-collections/internal/registry"
	"github.com/DjordjeVuckovic/restless-collections/internal/transport"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
)

// browser is what the CLI needs from both collection kinds
type browser interface {
	Fetch(ctx context.Context, opts collection.FetchOptions) ([]record.Record, error)
	GoTo(ctx context.Context, target pagination.Target) ([]record.Record, error)
	Remaining() bool
	State() pagination.State
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		slog.Error("Browse failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliConfig, out io.Writer) error {
	tc, err := cfg.transportConfig()
	if err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	fetcher := transport.NewHTTPFetcherFromConfig(tc)

	opts := []collection.PagedOption[record.Record]{
		collection.WithPageLength[record.Record](cfg.PageLength),
		collection.WithObserver[record.Record](logEvent(cfg.Resource)),
	}
	if cfg.SchemaPath != "" {
		schema, err := record.LoadSchema(cfg.SchemaPath)
		if err != nil {
			return err
		}
		opts = append(opts, collection.WithDecodeHook(schema.Coerce))
	}

	kinds := newKinds(ctx, cfg, fetcher, opts)
	b, err := kinds.Resolve(cfg.Kind)
	if err != nil {
		return fmt.Errorf("%w (known kinds: %s)", err, strings.Join(kinds.Names(), ", "))
	}

	enc := json.NewEncoder(out)
	page, err := b.Fetch(ctx, collection.FetchOptions{Reset: true})
	if err != nil {
		return err
	}

	if cfg.Goto != "" {
		target, err := pagination.ParseTarget(cfg.Goto)
		if err != nil {
			return err
		}
		if page, err = b.GoTo(ctx, target); err != nil {
			return err
		}
		if err := writeRecords(enc, page); err != nil {
			return err
		}
		return writeFooter(out, b.State())
	}

	fetched := 1
	for {
		if err := writeRecords(enc, page); err != nil {
			return err
		}
		if !b.Remaining() || (cfg.Pages > 0 && fetched >= cfg.Pages) {
			break
		}
		if page, err = b.Fetch(ctx, collection.FetchOptions{}); err != nil {
			return err
		}
		fetched++
		if len(page) == 0 {
			break
		}
	}

	return writeFooter(out, b.State())
}

// newKinds registers the collection kinds the CLI can browse
func newKinds(ctx context.Context, cfg cliConfig, fetcher transport.Fetcher, opts []collection.PagedOption[record.Record]) *registry.Registry[browser] {
	kinds := registry.New[browser]()

	kinds.MustRegister("paged", func() (browser, error) {
		return collection.NewPaged(fetcher, cfg.Resource, opts...), nil
	})

	kinds.MustRegister("filtered", func() (browser, error) {
		f := collection.NewFiltered(fetcher, cfg.Resource, opts...)
		for _, raw := range cfg.Filters {
			shorthand, err := parseFilterFlag(raw)
			if err != nil {
				return nil, err
			}
			if _, err := f.FilterBy(ctx, shorthand, collection.WithNoFetch()); err != nil {
				return nil, fmt.Errorf("filter %q: %w", raw, err)
			}
		}
		for _, raw := range cfg.Sorts {
			if _, err := f.SortBy(ctx, parseSortFlag(raw), collection.WithNoFetch()); err != nil {
				return nil, fmt.Errorf("sort %q: %w", raw, err)
			}
		}
		return f, nil
	})

	return kinds
}

func logEvent(resource string) collection.Observer {
	return func(e collection.Event) {
		slog.Debug("Collection event", "resource", resource, "event", e.String())
		if sp, ok := e.(collection.ShowingPage); ok {
			slog.Info("Showing page", "resource", resource, "page", sp.Page)
		}
	}
}

func writeRecords(enc *json.Encoder, records []record.Record) error {
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write record %s: %w", r, err)
		}
	}
	return nil
}

func writeFooter(out io.Writer, s pagination.State) error {
	view := pagination.Footer(s, pagination.ShowWhenPaged)
	if !view.Visible {
		_, err := fmt.Fprintf(out, "# %d results\n", s.NumResults)
		return err
	}
	_, err := fmt.Fprintf(out, "# page %d/%d, %d results: %s\n",
		view.Page, view.TotalPages, s.NumResults, strings.Join(view.Labels(), " "))
	return err
}
