// Package logging provides config-driven categorized file-based logging.
// Logs are written to <data-dir>/logs/ with a separate file per category.
// Nothing is written unless debug mode is enabled in the configuration,
// so the production default is a silent no-op.
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
	CategoryBoot       Category = "boot"       // Startup, wiring
	CategoryClassifier Category = "classifier" // Intent classification decisions
	CategoryNLP        Category = "nlp"        // Normalization, date/expense extraction
	CategoryStore      Category = "store"      // Key-value store operations
	CategoryRetrieval  Category = "retrieval"  // Document scoring, prompt assembly
	CategoryModel      Category = "model"      // Artifact lifecycle, downloads
	CategorySession    Category = "session"    // Inference session
	CategoryPacer      Category = "pacer"      // Output pacing
	CategoryChat       Category = "chat"       // Chat TUI events
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Settings controls what gets logged. It mirrors config.LoggingConfig to
// avoid a circular import with the config package.
type Settings struct {
	DebugMode  bool
	Level      string
	Categories map[string]bool
}

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
	settings  Settings
	setMu     sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory and applies settings.
// Should be called once at startup with the data directory path.
func Initialize(dataDir string, s Settings) error {
	if dataDir == "" {
		return fmt.Errorf("data directory required")
	}

	setMu.Lock()
	settings = s
	switch s.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	setMu.Unlock()

	// Silent no-op in production mode.
	if !s.DebugMode {
		return nil
	}

	logsDir = filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	Boot("=== logging initialized ===")
	Boot("logs directory: %s", logsDir)
	Boot("level: %s", s.Level)
	return nil
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	setMu.RLock()
	defer setMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true // all enabled by default in debug mode
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
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

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always written when logging is active).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes every open log file. Call on shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Convenience helpers, one pair per category.

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

func Classifier(format string, args ...interface{}) {
	Get(CategoryClassifier).Info(format, args...)
}
func ClassifierDebug(format string, args ...interface{}) {
	Get(CategoryClassifier).Debug(format, args...)
}

func NLP(format string, args ...interface{}) { Get(CategoryNLP).Info(format, args...) }
func NLPDebug(format string, args ...interface{}) {
	Get(CategoryNLP).Debug(format, args...)
}

func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

func Retrieval(format string, args ...interface{}) {
	Get(CategoryRetrieval).Info(format, args...)
}
func RetrievalDebug(format string, args ...interface{}) {
	Get(CategoryRetrieval).Debug(format, args...)
}

func Model(format string, args ...interface{}) { Get(CategoryModel).Info(format, args...) }
func ModelDebug(format string, args ...interface{}) {
	Get(CategoryModel).Debug(format, args...)
}

func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

func Pacer(format string, args ...interface{}) { Get(CategoryPacer).Info(format, args...) }
func PacerDebug(format string, args ...interface{}) {
	Get(CategoryPacer).Debug(format, args...)
}

func Chat(format string, args ...interface{}) { Get(CategoryChat).Info(format, args...) }
func ChatDebug(format string, args ...interface{}) {
	Get(CategoryChat).Debug(format, args...)
}

// Timer measures the duration of an operation and logs it on Stop.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s took %v", t.operation, elapsed)
	return elapsed
}
