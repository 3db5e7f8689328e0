// Package logging sets up the process logger: text on the console, JSON in a
// daily rotating file.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/giygas/pharmacie-api/config"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var (
	defaultService atomic.Pointer[LoggingService]
	serviceMu      sync.Mutex
)

// InitLogger initializes the global logger from the loaded configuration
func InitLogger(cfg *config.Config) {
	verbose := os.Getenv("VERBOSE") != ""
	initLogger(cfg.LogDir, cfg.Env, cfg.LogLevel, cfg.LogRetentionDays, cfg.MaxLogFileSize, verbose)
}

func initLogger(logDir string, env config.Environment, logLevel string, retentionDays int, maxFileSize int64, verbose bool) {
	serviceMu.Lock()
	defer serviceMu.Unlock()

	if old := defaultService.Load(); old != nil && old.rotating != nil {
		_ = old.rotating.Close()
	}

	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(env, logLevel, verbose),
	})

	svc := &LoggingService{}
	rl, err := openRotating(logDir, retentionDays, maxFileSize)
	if err != nil {
		svc.Logger = slog.New(consoleHandler)
		svc.Logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
	} else {
		fileHandler := slog.NewJSONHandler(rl, &slog.HandlerOptions{Level: GetFileLogLevel()})
		svc.Logger = slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
		svc.rotating = rl
	}

	defaultService.Store(svc)
	slog.SetDefault(svc.Logger)
}

func openRotating(logDir string, retentionDays int, maxFileSize int64) (*RotatingLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	rl := NewRotatingLogger(logDir, retentionDays, maxFileSize)
	rl.mu.Lock()
	err := rl.doRotate(getDayKey(rl.now()))
	rl.mu.Unlock()
	if err != nil {
		rl.cancel()
		return nil, err
	}
	rl.startCleanup()
	return rl, nil
}

// Close flushes and closes the log file, the console keeps working.
func Close() error {
	serviceMu.Lock()
	defer serviceMu.Unlock()

	svc := defaultService.Swap(nil)
	slog.SetDefault(fallback)
	if svc == nil || svc.rotating == nil {
		return nil
	}
	return svc.rotating.Close()
}

// TB is the part of testing.TB ResetForTest needs.
type TB interface {
	Helper()
	Cleanup(func())
}

// ResetForTest installs a logger writing under dir and closes it at the end of the test
func ResetForTest(t TB, dir string, env config.Environment, logLevel string, retentionDays int, maxFileSize int64) {
	t.Helper()
	initLogger(dir, env, logLevel, retentionDays, maxFileSize, false)
	t.Cleanup(func() { _ = Close() })
}

// Logger returns the process logger, or a stderr one if InitLogger was not called
func Logger() *slog.Logger {
	if svc := defaultService.Load(); svc != nil && svc.Logger != nil {
		return svc.Logger
	}
	return fallback
}

var fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
