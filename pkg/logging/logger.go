/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Structured logging for the SEMS inference tools. Wraps logrus with timestamped
log files, JSON, text and custom formats, an asynchronous queue for general messages and
helpers for inference, sweep, rule-base and report events.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
	LogFormatEvents LogFormat = "events"
)

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // console only when empty
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`
	Compress  bool      `json:"compress"`

	// Console receives every entry alongside the log file. Defaults to stderr.
	Console io.Writer `json:"-"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatText,
		OutputDir: "./logs",
		MaxFiles:  10,
		Timestamp: true,
		Caller:    false,
		Colors:    true,
		Compress:  false,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom, LogFormatEvents:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

type logEntry struct {
	level  logrus.Level
	msg    string
	fields logrus.Fields
}

// Logger provides structured logging for the inference tools.
// Debug, Info, Warning and Error are queued and written by a background goroutine;
// the event helpers write synchronously.
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time

	console   io.Writer
	logQueue  chan logEntry
	quit      chan struct{}
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
		logQueue:  make(chan logEntry, 1024),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	go l.runLogQueue()

	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	console := l.config.Console
	if console == nil {
		console = os.Stderr
	}
	l.console = console
	l.logger.SetOutput(console)

	return l.setupFileOutput(console)
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: prettyCaller,
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})

	case LogFormatEvents:
		l.logger.SetFormatter(&EventFormatter{
			CustomFormatter: CustomFormatter{
				Timestamp: l.config.Timestamp,
				Caller:    l.config.Caller,
				Colors:    l.config.Colors,
			},
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupFileOutput opens a timestamped log file and tees output into it
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", filePrefix, timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.filePath = path

	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("SEMS logging system initialized")

	return nil
}

// runLogQueue flushes queued entries until Close, then drains what is left
func (l *Logger) runLogQueue() {
	defer close(l.done)
	for {
		select {
		case entry := <-l.logQueue:
			l.logger.WithFields(entry.fields).Log(entry.level, entry.msg)
		case <-l.quit:
			for {
				select {
				case entry := <-l.logQueue:
					l.logger.WithFields(entry.fields).Log(entry.level, entry.msg)
				default:
					return
				}
			}
		}
	}
}

// enqueue queues an entry, or writes it directly once the logger is closed
func (l *Logger) enqueue(level logrus.Level, msg string, fields map[string]interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.WithFields(fields).Log(level, msg)
		return
	}
	l.logQueue <- logEntry{level: level, msg: msg, fields: fields}
}

// Inference-specific logging methods

// LogComputation logs one inference pass
func (l *Logger) LogComputation(inputs, outputs map[string]float64, fired int, duration time.Duration) {
	fields := logrus.Fields{
		"fired":    fired,
		"duration": duration,
	}
	for name, v := range inputs {
		fields["in."+name] = v
	}
	for name, v := range outputs {
		fields["out."+name] = v
	}
	l.logger.WithFields(fields).Info("Inference computed")
}

// LogInputRejected logs a value refused by an input collector
func (l *Logger) LogInputRejected(name string, value string, reason string) {
	l.logger.WithFields(logrus.Fields{
		"variable": name,
		"value":    value,
		"reason":   reason,
	}).Warning("Input rejected")
}

// LogSweep logs a completed response-surface sweep
func (l *Logger) LogSweep(x, y string, points, failures int, duration time.Duration) {
	entry := l.logger.WithFields(logrus.Fields{
		"x":        x,
		"y":        y,
		"points":   points,
		"failures": failures,
		"duration": duration,
	})
	if failures > 0 {
		entry.Warning("Surface sweep completed")
		return
	}
	entry.Info("Surface sweep completed")
}

// LogRuleBase logs a loaded rule base
func (l *Logger) LogRuleBase(name, source string, antecedents, consequents, rules int) {
	l.logger.WithFields(logrus.Fields{
		"rule_base":   name,
		"source":      source,
		"antecedents": antecedents,
		"consequents": consequents,
		"rules":       rules,
	}).Info("Rule base loaded")
}

// LogReport logs a written report artifact
func (l *Logger) LogReport(kind, path string) {
	l.logger.WithFields(logrus.Fields{
		"kind": kind,
		"path": path,
	}).Info("Report written")
}

// Close flushes queued entries, closes the log file and applies the retention policy
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.quit)
		l.mu.Unlock()
		<-l.done

		if l.fileHandle == nil {
			return
		}
		l.logger.SetOutput(l.console)
		if cerr := l.fileHandle.Close(); cerr != nil {
			err = fmt.Errorf("failed to close log file: %w", cerr)
			return
		}

		manager := NewLogManager(l.config.OutputDir, l.config.MaxFiles, l.config.Compress)
		if cerr := manager.CleanupOldLogs(); cerr != nil {
			err = fmt.Errorf("failed to cleanup log files: %w", cerr)
		}
	})
	return err
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// FilePath returns the current log file, or "" when logging to the console only
func (l *Logger) FilePath() string {
	return l.filePath
}

// Debug logs a debug message (async)
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.DebugLevel, msg, fields)
}

// Info logs an info message (async)
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.InfoLevel, msg, fields)
}

// Warning logs a warning message (async)
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.WarnLevel, msg, fields)
}

// Error logs an error message (async)
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.ErrorLevel, msg, fields)
}
