package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LocalEnv is the ENV value of a developer machine, where a missing .env is an error
const LocalEnv = "local"

// LoadDotEnv loads environment variables from a .env file.
// ENV_PATH overrides defaultPath. Variables already set in the process win.
func LoadDotEnv(env string, defaultPath string) error {
	envPath := os.Getenv("ENV_PATH")
	if envPath == "" {
		slog.Debug("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	err := godotenv.Load(envPath)
	if err == nil {
		return nil
	}
	if env == LocalEnv || !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Failed to load environment variables", "path", envPath, "error", err)
		return err
	}

	slog.Debug("Skipping .env ...", "path", envPath)
	return nil
}
