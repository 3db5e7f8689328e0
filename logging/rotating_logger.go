package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const dayLayout = "2006-01-02"

var numberedFile = regexp.MustCompile(`^app-\d{4}-\d{2}-\d{2}_(\d{2})\.log$`)

// RotatingLogger writes to one log file per day, starts a numbered file when
// the size cap is reached, and removes files older than the retention period.
type RotatingLogger struct {
	logDir      string
	currentFile *os.File
	currentDay  string
	retention   time.Duration
	maxFileSize int64
	currentSize atomic.Int64
	mu          sync.Mutex
	now         func() time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

// NewRotatingLogger creates a rotating logger keeping retentionDays of files.
// maxFileSize <= 0 disables size rotation.
func NewRotatingLogger(logDir string, retentionDays int, maxFileSize int64) *RotatingLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}
}

func getDayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// doRotate opens the file for targetDay (caller must hold the lock)
func (rl *RotatingLogger) doRotate(targetDay string) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		rl.currentFile = nil
	}

	sizeRotation := rl.currentDay == targetDay && rl.maxFileSize > 0 && rl.currentSize.Load() >= rl.maxFileSize
	fileName := rl.pickFile(targetDay, sizeRotation)

	logPath := filepath.Join(rl.logDir, fileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	rl.currentFile = file
	rl.currentDay = targetDay
	rl.currentSize.Store(0)
	if info, err := file.Stat(); err == nil {
		rl.currentSize.Store(info.Size())
	}

	return nil
}

// pickFile returns the base file for the day unless it is full, in which case
// the highest numbered file with room, or the next number.
func (rl *RotatingLogger) pickFile(day string, sizeRotation bool) string {
	base := fmt.Sprintf("app-%s.log", day)
	if rl.maxFileSize <= 0 {
		return base
	}

	if !sizeRotation {
		info, err := os.Stat(filepath.Join(rl.logDir, base))
		if err != nil || info.Size() < rl.maxFileSize {
			return base
		}
	}

	highest, lastSize := 0, int64(0)
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, fmt.Sprintf("app-%s_??.log", day)))
	for _, match := range matches {
		m := numberedFile.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num > highest {
			highest = num
			lastSize = 0
			if info, err := os.Stat(match); err == nil {
				lastSize = info.Size()
			}
		}
	}

	if highest > 0 && lastSize < rl.maxFileSize && !sizeRotation {
		return fmt.Sprintf("app-%s_%02d.log", day, highest)
	}
	return fmt.Sprintf("app-%s_%02d.log", day, highest+1)
}

// Write writes data to the current log file
func (rl *RotatingLogger) Write(p []byte) (n int, err error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	day := getDayKey(rl.now())
	needsRotation := rl.currentFile == nil || rl.currentDay != day
	if rl.maxFileSize > 0 && !needsRotation {
		size := rl.currentSize.Load()
		if size > 0 && size+int64(len(p)) > rl.maxFileSize {
			needsRotation = true
			rl.currentSize.Store(rl.maxFileSize)
		}
	}

	if needsRotation {
		if err = rl.doRotate(day); err != nil {
			return 0, err
		}
	}

	n, err = rl.currentFile.Write(p)
	rl.currentSize.Add(int64(n))
	return n, err
}

// cleanupOldLogs removes log files older than the retention period
func (rl *RotatingLogger) cleanupOldLogs() (int, error) {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := rl.now().Add(-rl.retention)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.logDir, entry.Name())); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// startCleanup runs cleanupOldLogs once a day until Close.
func (rl *RotatingLogger) startCleanup() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		defer close(rl.cleanupDone)

		for {
			select {
			case <-rl.ctx.Done():
				return
			case <-ticker.C:
				if n, err := rl.cleanupOldLogs(); err != nil {
					slog.Warn("Failed to cleanup old logs", "error", err)
				} else if n > 0 {
					// console only, the file handler may be the one being cleaned
					fmt.Printf("Cleaned up %d old log files\n", n)
				}
			}
		}
	}()
}

// Close stops the background cleanup and closes the current file
func (rl *RotatingLogger) Close() error {
	rl.cancel()

	select {
	case <-rl.cleanupDone:
	case <-time.After(time.Second):
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile != nil {
		err := rl.currentFile.Close()
		rl.currentFile = nil
		return err
	}
	return nil
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
