// Package logging provides categorized file-based logging for dossier.
// Each subsystem writes to its own date-stamped file under the configured
// log directory, so a surveillance sweep can be traced per concern
// (gateway calls, store writes, sweep scheduling) without interleaving.
// When no directory is configured the package is a silent no-op;
// process-level console output is handled by zap in cmd.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and shutdown
	CategoryConfig  Category = "config"  // Effective configuration
	CategoryStore   Category = "store"   // Idea repository + event log (SQLite)
	CategoryObjects Category = "objects" // Object store reads/writes
	CategoryGateway Category = "gateway" // AI gateway calls (generate, research)
	CategorySurveil Category = "surveil" // Per-idea state machine decisions
	CategorySweep   Category = "sweep"   // Sweep controller, worker pool
	CategoryIntake  Category = "intake"  // Idea intake pipeline
	CategoryServer  Category = "server"  // HTTP surface, scheduler
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	logLevel  = LevelInfo
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and level. An empty dir leaves
// the package disabled (every call becomes a no-op). Safe to call once at
// startup before any Get.
func Initialize(dir, level string) error {
	loggersMu.Lock()
	logsDir = dir
	loggersMu.Unlock()
	SetLevel(level)

	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== dossier logging initialized ===")
	boot.Info("logs directory: %s", dir)
	boot.Info("level: %s", level)
	return nil
}

// SetLevel parses a level name; unknown names fall back to info.
func SetLevel(level string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	switch level {
	case "debug":
		logLevel = LevelDebug
	case "info", "":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
}

// Enabled reports whether file logging is active.
func Enabled() bool {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return logsDir != ""
}

// Get returns (or creates) the logger for a category. Returns a no-op
// logger when logging is disabled or the file cannot be opened.
func Get(category Category) *Logger {
	loggersMu.RLock()
	dir := logsDir
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	if dir == "" {
		return &Logger{category: category}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring the write lock.
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial: one file per category per day.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func level() int {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return logLevel
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || level() > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || level() > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || level() > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always written if the logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// reset restores pristine package state. Test helper.
func reset() {
	CloseAll()
	loggersMu.Lock()
	logsDir = ""
	logLevel = LevelInfo
	loggersMu.Unlock()
}

// =============================================================================
// CONVENIENCE FUNCTIONS - quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootError logs error to the boot category
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
}

// Config logs to the config category
func Config(format string, args ...interface{}) {
	Get(CategoryConfig).Info(format, args...)
}

// ConfigDebug logs debug to the config category
func ConfigDebug(format string, args ...interface{}) {
	Get(CategoryConfig).Debug(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// StoreError logs error to the store category
func StoreError(format string, args ...interface{}) {
	Get(CategoryStore).Error(format, args...)
}

// Objects logs to the objects category
func Objects(format string, args ...interface{}) {
	Get(CategoryObjects).Info(format, args...)
}

// ObjectsDebug logs debug to the objects category
func ObjectsDebug(format string, args ...interface{}) {
	Get(CategoryObjects).Debug(format, args...)
}

// ObjectsError logs error to the objects category
func ObjectsError(format string, args ...interface{}) {
	Get(CategoryObjects).Error(format, args...)
}

// Gateway logs to the gateway category
func Gateway(format string, args ...interface{}) {
	Get(CategoryGateway).Info(format, args...)
}

// GatewayDebug logs debug to the gateway category
func GatewayDebug(format string, args ...interface{}) {
	Get(CategoryGateway).Debug(format, args...)
}

// GatewayWarn logs warning to the gateway category
func GatewayWarn(format string, args ...interface{}) {
	Get(CategoryGateway).Warn(format, args...)
}

// GatewayError logs error to the gateway category
func GatewayError(format string, args ...interface{}) {
	Get(CategoryGateway).Error(format, args...)
}

// Surveil logs to the surveil category
func Surveil(format string, args ...interface{}) {
	Get(CategorySurveil).Info(format, args...)
}

// SurveilDebug logs debug to the surveil category
func SurveilDebug(format string, args ...interface{}) {
	Get(CategorySurveil).Debug(format, args...)
}

// SurveilWarn logs warning to the surveil category
func SurveilWarn(format string, args ...interface{}) {
	Get(CategorySurveil).Warn(format, args...)
}

// SurveilError logs error to the surveil category
func SurveilError(format string, args ...interface{}) {
	Get(CategorySurveil).Error(format, args...)
}

// Sweep logs to the sweep category
func Sweep(format string, args ...interface{}) {
	Get(CategorySweep).Info(format, args...)
}

// SweepDebug logs debug to the sweep category
func SweepDebug(format string, args ...interface{}) {
	Get(CategorySweep).Debug(format, args...)
}

// SweepError logs error to the sweep category
func SweepError(format string, args ...interface{}) {
	Get(CategorySweep).Error(format, args...)
}

// Intake logs to the intake category
func Intake(format string, args ...interface{}) {
	Get(CategoryIntake).Info(format, args...)
}

// IntakeDebug logs debug to the intake category
func IntakeDebug(format string, args ...interface{}) {
	Get(CategoryIntake).Debug(format, args...)
}

// IntakeWarn logs warning to the intake category
func IntakeWarn(format string, args ...interface{}) {
	Get(CategoryIntake).Warn(format, args...)
}

// IntakeError logs error to the intake category
func IntakeError(format string, args ...interface{}) {
	Get(CategoryIntake).Error(format, args...)
}

// Server logs to the server category
func Server(format string, args ...interface{}) {
	Get(CategoryServer).Info(format, args...)
}

// ServerDebug logs debug to the server category
func ServerDebug(format string, args ...interface{}) {
	Get(CategoryServer).Debug(format, args...)
}

// ServerError logs error to the server category
func ServerError(format string, args ...interface{}) {
	Get(CategoryServer).Error(format, args...)
}

// =============================================================================
// TIMING HELPERS - for performance logging
// =============================================================================

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
