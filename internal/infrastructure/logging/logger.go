package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// DebugLevel logs everything
	DebugLevel LogLevel = iota
	// InfoLevel logs info, warnings, errors
	InfoLevel
	// WarnLevel logs warnings and errors
	WarnLevel
	// ErrorLevel logs only errors
	ErrorLevel
	// FatalLevel logs only fatal errors
	FatalLevel
)

// Logger wraps zerolog for structured logging
type Logger struct {
	logger zerolog.Logger
	level  LogLevel
	fields map[string]interface{}
	mu     sync.RWMutex
}

// LoggerConfig configures the logger
type LoggerConfig struct {
	Level      LogLevel
	OutputPath string
	Console    bool
	JSON       bool
	TimeFormat string
	Context    map[string]interface{}
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      InfoLevel,
		Console:    true,
		JSON:       false,
		TimeFormat: time.RFC3339,
		Context:    make(map[string]interface{}),
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// Set global log level
	level := parseZerologLevel(config.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer
	if config.Console {
		if config.JSON {
			output = os.Stdout
		} else {
			output = zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: config.TimeFormat,
			}
		}
	}

	// Add file output if specified
	if config.OutputPath != "" {
		// Create log directory if it doesn't exist
		dir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		if output != nil {
			output = io.MultiWriter(output, file)
		} else {
			output = file
		}
	}

	// Create logger with context
	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", "ecsworld").
		Logger()

	// Add custom context fields
	for key, value := range config.Context {
		logger = logger.With().Interface(key, value).Logger()
	}

	return &Logger{
		logger: logger,
		level:  config.Level,
		fields: make(map[string]interface{}),
	}, nil
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
		level:  l.level,
		fields: make(map[string]interface{}),
	}

	// Copy existing fields
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	newLogger.fields[key] = value

	return newLogger
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := &Logger{
		logger: l.logger,
		level:  l.level,
		fields: make(map[string]interface{}),
	}

	// Copy existing fields
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}

	// Add new fields
	for key, value := range fields {
		newLogger.logger = newLogger.logger.With().Interface(key, value).Logger()
		newLogger.fields[key] = value
	}

	return newLogger
}

// WithContext adds context to the logger
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	// Extract common context values
	fields := make(map[string]interface{})

	// Add request ID if present
	if reqID := ctx.Value("request_id"); reqID != nil {
		fields["request_id"] = reqID
	}

	// Add user ID if present
	if userID := ctx.Value("user_id"); userID != nil {
		fields["user_id"] = userID
	}

	// Add session ID if present
	if sessionID := ctx.Value("session_id"); sessionID != nil {
		fields["session_id"] = sessionID
	}

	if len(fields) > 0 {
		return l.WithFields(fields)
	}

	return l
}

// WithError adds an error field to the logger
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string) {
	l.logger.Fatal().Msg(msg)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatal().Msgf(format, args...)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(msg string) {
	l.logger.Panic().Msg(msg)
}

// Panicf logs a formatted panic message and panics
func (l *Logger) Panicf(format string, args ...interface{}) {
	l.logger.Panic().Msgf(format, args...)
}

// LogEvent logs a structured event
func (l *Logger) LogEvent(eventType string, fields map[string]interface{}) {
	event := l.logger.Info().
		Str("event_type", eventType).
		Time("timestamp", time.Now())

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg("Event occurred")
}

// LogEntityLifecycle logs an entity add/remove/enable/disable transition.
func (l *Logger) LogEntityLifecycle(entityID string, transition string, componentCount int) {
	l.logger.Info().
		Str("entity_id", entityID).
		Str("transition", transition).
		Int("component_count", componentCount).
		Msg("Entity lifecycle")
}

// LogPerformance logs performance metrics
func (l *Logger) LogPerformance(operation string, duration time.Duration, metadata map[string]interface{}) {
	event := l.logger.Info().
		Str("operation", operation).
		Dur("duration", duration).
		Float64("duration_ms", float64(duration.Milliseconds()))

	for key, value := range metadata {
		event = event.Interface(key, value)
	}

	event.Msg("Performance metric")
}

// LogSystemDispatch logs one system's per-tick dispatch timing.
func (l *Logger) LogSystemDispatch(systemName string, group string, entityCount int, duration time.Duration) {
	l.logger.Info().
		Str("system", systemName).
		Str("group", group).
		Int("entity_count", entityCount).
		Dur("duration", duration).
		Msg("System dispatched")
}

// LogQueryCacheEvent logs a query cache hit/miss/invalidation.
func (l *Logger) LogQueryCacheEvent(kind string, cacheKey uint64, resultSize int) {
	l.logger.Debug().
		Str("kind", kind).
		Uint64("cache_key", cacheKey).
		Int("result_size", resultSize).
		Msg("Query cache event")
}

// LogError logs an error with context
func (l *Logger) LogError(err error, operation string, metadata map[string]interface{}) {
	if err == nil {
		return
	}

	// Get caller information
	_, file, line, _ := runtime.Caller(1)

	event := l.logger.Error().
		Err(err).
		Str("operation", operation).
		Str("file", filepath.Base(file)).
		Int("line", line)

	for key, value := range metadata {
		event = event.Interface(key, value)
	}

	event.Msg("Error occurred")
}

// LogObserverDispatch logs a deferred observer handler invocation.
func (l *Logger) LogObserverDispatch(observerName string, entityID string, kind string) {
	l.logger.Debug().
		Str("observer", observerName).
		Str("entity_id", entityID).
		Str("kind", kind).
		Msg("Observer dispatched")
}

// LogRelationshipChange logs a relationship add/remove.
func (l *Logger) LogRelationshipChange(source string, relation string, target string, added bool) {
	l.logger.Debug().
		Str("source", source).
		Str("relation", relation).
		Str("target", target).
		Bool("added", added).
		Msg("Relationship changed")
}

// parseZerologLevel converts LogLevel to zerolog.Level
func parseZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case FatalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return &Logger{
		logger: log.Logger,
		level:  InfoLevel,
		fields: make(map[string]interface{}),
	}
}
