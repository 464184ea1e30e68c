package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/restless-collections/pkg/config/env"
	"github.com/DjordjeVuckovic/restless-collections/pkg/pagination"
	"github.com/DjordjeVuckovic/restless-collections/pkg/stringsutil"
)

type Config struct {
	Port          string
	UseHttp2      bool
	CorsOrigins   []string
	DatasetPath   string
	Prefix        string
	MaxPageLength int
	HealthPath    string
}

func LoadConfig(envPath string) (*Config, error) {
	err := env.LoadDotEnv(os.Getenv("ENV"), envPath)
	if err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	useHttp2 := os.Getenv("USE_HTTP2") == "true"

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	origins := stringsutil.SplitTrim(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	datasetPath := os.Getenv("STUB_DATASET")
	if datasetPath == "" {
		return nil, errors.New("STUB_DATASET environment variable is not set")
	}

	prefix := os.Getenv("STUB_PREFIX")
	if prefix == "" {
		prefix = "/api"
	}
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("invalid STUB_PREFIX %q: must start with /", prefix)
	}

	maxPageLength := pagination.MaxPageLength
	if raw := os.Getenv("STUB_MAX_PAGE_LENGTH"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid STUB_MAX_PAGE_LENGTH %q: must be a positive integer", raw)
		}
		maxPageLength = n
	}

	return &Config{
		Port:          port,
		UseHttp2:      useHttp2,
		CorsOrigins:   origins,
		DatasetPath:   datasetPath,
		Prefix:        strings.TrimRight(prefix, "/"),
		MaxPageLength: maxPageLength,
	}, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
