// Package logging provides config-driven categorized file-based logging for shopchat.
// Logs are written to .shopchat/logs/ with separate files per category.
// Logging is controlled by debug_mode in the logging config - when false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot        Category = "boot"        // Startup, workspace discovery
	CategorySession     Category = "session"     // Chat session lifecycle, reply timers
	CategoryAttachments Category = "attachments" // Staging, preview handles
	CategorySettings    Category = "settings"    // Appearance / notification preferences
	CategoryStore       Category = "store"       // SQLite catalog store
	CategoryServer      Category = "server"      // HTTP + WebSocket bridge
	CategoryUI          Category = "ui"          // TUI update loop
	CategoryConfig      Category = "config"      // Config loading and file watching
)

// Options mirrors config.LoggingConfig to avoid circular imports.
type Options struct {
	DebugMode  bool
	Level      string
	JSONFormat bool
	Categories map[string]bool
}

// Logger is a category-scoped logger. The zero value (no core) drops everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	config    Options
	configMu  sync.RWMutex
	level     = zapcore.InfoLevel
)

// Initialize sets up the logging directory for the workspace.
// Should be called once at startup.
func Initialize(workspace string, cfg Options) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	CloseAll()

	configMu.Lock()
	config = cfg
	level = parseLevel(cfg.Level)
	configMu.Unlock()

	loggersMu.Lock()
	logsDir = filepath.Join(workspace, ".shopchat", "logs")
	loggersMu.Unlock()

	if !cfg.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	Boot("=== shopchat logging initialized ===")
	Boot("Workspace: %s", workspace)
	BootDebug("Log level: %s, json: %v", level, cfg.JSONFormat)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	dir := logsDir
	loggersMu.RUnlock()

	if dir == "" {
		return &Logger{category: category}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(newCore(file)).Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

func newCore(file *os.File) zapcore.Core {
	configMu.RLock()
	jsonFormat := config.JSONFormat
	lvl := level
	configMu.RUnlock()

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(file), lvl)
}

// Zap exposes the underlying structured logger. Never nil.
func (l *Logger) Zap() *zap.Logger {
	if l.sugar == nil {
		return zap.NewNop()
	}
	return l.sugar.Desugar()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a child logger carrying structured key-value context.
func (l *Logger) With(kv ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(kv...)}
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - no-ops if the category is disabled
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func Session(format string, args ...interface{})      { Get(CategorySession).Info(format, args...) }
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }
func SessionWarn(format string, args ...interface{})  { Get(CategorySession).Warn(format, args...) }

func Attachments(format string, args ...interface{}) {
	Get(CategoryAttachments).Info(format, args...)
}
func AttachmentsDebug(format string, args ...interface{}) {
	Get(CategoryAttachments).Debug(format, args...)
}
func AttachmentsWarn(format string, args ...interface{}) {
	Get(CategoryAttachments).Warn(format, args...)
}

func Settings(format string, args ...interface{})      { Get(CategorySettings).Info(format, args...) }
func SettingsError(format string, args ...interface{}) { Get(CategorySettings).Error(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

func Server(format string, args ...interface{})      { Get(CategoryServer).Info(format, args...) }
func ServerDebug(format string, args ...interface{}) { Get(CategoryServer).Debug(format, args...) }
func ServerWarn(format string, args ...interface{})  { Get(CategoryServer).Warn(format, args...) }

func UI(format string, args ...interface{})      { Get(CategoryUI).Info(format, args...) }
func UIDebug(format string, args ...interface{}) { Get(CategoryUI).Debug(format, args...) }

func Config(format string, args ...interface{})      { Get(CategoryConfig).Info(format, args...) }
func ConfigWarn(format string, args ...interface{})  { Get(CategoryConfig).Warn(format, args...) }
func ConfigDebug(format string, args ...interface{}) { Get(CategoryConfig).Debug(format, args...) }

// =============================================================================
// TIMING
// =============================================================================

// Timer measures an operation and logs its duration on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.operation, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the operation exceeded threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s slow: %v (threshold %v)", t.operation, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.operation, elapsed)
	}
	return elapsed
}
