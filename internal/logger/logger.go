package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"tryon/internal/config"
)

// Level names a log file under the log directory.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ParseLevel maps a route segment such as "warning" to a Level.
func ParseLevel(name string) (Level, bool) {
	switch Level(name) {
	case LevelInfo, LevelWarning, LevelError:
		return Level(name), true
	}
	return "", false
}

// FileName returns the log file backing the level.
func (lv Level) FileName() string {
	return string(lv) + ".log"
}

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	files      []*os.File
	logDir     string
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) (*Logger, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logger := &Logger{
		logDir: config.LogDirectory,
	}

	if err := logger.setupLoggers(); err != nil {
		logger.Close()
		return nil, err
	}
	return logger, nil
}

// setupLoggers initializes writers and per-level loggers.
func (l *Logger) setupLoggers() error {
	writers := make(map[Level]io.Writer, 3)
	for _, lv := range []Level{LevelInfo, LevelWarning, LevelError} {
		file, err := os.OpenFile(l.Path(lv), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", lv.FileName(), err)
		}
		l.files = append(l.files, file)
		writers[lv] = file
	}

	l.infoLog = log.New(io.MultiWriter(os.Stdout, writers[LevelInfo]), "INFO    ", log.Ldate|log.Ltime|log.Lshortfile)
	l.warningLog = log.New(io.MultiWriter(os.Stdout, writers[LevelWarning]), "WARNING ", log.Ldate|log.Ltime|log.Lshortfile)
	l.errorLog = log.New(io.MultiWriter(os.Stderr, writers[LevelError]), "ERROR   ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

// Path returns the absolute location of a level's log file.
func (l *Logger) Path(lv Level) string {
	return filepath.Join(l.logDir, lv.FileName())
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// CleanLogs truncates the log file of the given level.
func (l *Logger) CleanLogs(lv Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Truncate(l.Path(lv), 0); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", lv.FileName(), err)
	}
	return nil
}

// Close releases the underlying log files.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}
