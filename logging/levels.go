package logging

import (
	"log/slog"
	"strings"

	"github.com/giygas/pharmacie-api/config"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. Tests stay quiet unless verbose,
// and an explicit LOG_LEVEL wins everywhere else.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file level, the file always gets everything.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}
