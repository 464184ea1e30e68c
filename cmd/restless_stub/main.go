package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/DjordjeVuckovic/restless-collections/internal/server"
	"github.com/DjordjeVuckovic/restless-collections/internal/stub"
	pkgserver "github.com/DjordjeVuckovic/restless-collections/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := server.LoadConfig(".env")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ds, err := stub.LoadDataset(cfg.DatasetPath)
	if err != nil {
		slog.Error("Failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}
	store, err := stub.NewStoreFromDataset(ds)
	if err != nil {
		slog.Error("Failed to build store", "error", err)
		os.Exit(1)
	}
	slog.Info("Dataset loaded", "path", cfg.DatasetPath, "resources", store.Resources())

	datasetPresent := pkgserver.HealthCheckerFunc(func(_ context.Context) bool {
		_, err := os.Stat(cfg.DatasetPath)
		return err == nil
	})

	s := server.New(cfg, pkgserver.All(store, datasetPresent)).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Restless stub is running")
	})

	stub.NewListRouter(s.Echo, store,
		stub.WithPrefix(cfg.Prefix),
		stub.WithMaxPageLength(cfg.MaxPageLength),
	).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
