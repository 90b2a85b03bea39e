// Package logging provides structured logging using Go's slog package.
package logging

import (
	"log/slog"
	"os"
	"time"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level)
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// InitLogger initializes the global logger with the specified level and format.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// ShardStart logs the beginning of shard processing.
func ShardStart(shardID int, path string, args ...any) {
	allArgs := []any{
		"shard_id", shardID,
		"path", path,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("shard_start", allArgs...)
}

// ShardSkipped logs a shard that could not be processed.
func ShardSkipped(shardID int, path string, err error, args ...any) {
	allArgs := []any{
		"shard_id", shardID,
		"path", path,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Error("shard_skipped", allArgs...)
}

// RecordSkipped logs a record that could not be processed.
func RecordSkipped(shardID int, recordID string, err error, args ...any) {
	allArgs := []any{
		"shard_id", shardID,
		"record_id", recordID,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Warn("record_skipped", allArgs...)
}

// UnknownLabel logs a classifier label outside the supported-language table.
func UnknownLabel(label string, args ...any) {
	allArgs := []any{
		"label", label,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Warn("unknown_label", allArgs...)
}

// RunSummary logs aggregate counts at the end of a run.
func RunSummary(shards, skippedShards, skippedRecords int, duration time.Duration, args ...any) {
	allArgs := []any{
		"shards", shards,
		"skipped_shards", skippedShards,
		"skipped_records", skippedRecords,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("run_summary", allArgs...)
}
