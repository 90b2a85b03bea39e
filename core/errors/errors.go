// Package errors provides standardized error types and helpers for the corpusgen codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrDestinationNotEmpty indicates a destination root that already contains files
	ErrDestinationNotEmpty = errors.New("destination not empty")
	// ErrInvalidDestination indicates a destination root that is not a usable directory
	ErrInvalidDestination = errors.New("invalid destination")
	// ErrUnknownLang indicates a language label outside the supported-language table
	ErrUnknownLang = errors.New("unknown language")
	// ErrInvalidRecord indicates a record that could not be decoded
	ErrInvalidRecord = errors.New("invalid record")
	// ErrShardUnreadable indicates a shard archive that could not be opened or read
	ErrShardUnreadable = errors.New("shard unreadable")
)

// ShardError represents a failure confined to a single shard.
// Shard errors are logged and skipped; they never abort the run.
type ShardError struct {
	ShardID int    // Index of the shard in enumeration order
	Path    string // Filesystem path of the shard archive
	Err     error  // Underlying error
}

func (e *ShardError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("shard %d (%s): %v", e.ShardID, e.Path, e.Err)
	}
	return fmt.Sprintf("shard %d: %v", e.ShardID, e.Err)
}

func (e *ShardError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrShardUnreadable
}

// RecordError represents a failure confined to a single record within a shard.
type RecordError struct {
	ShardID  int    // Shard the record belongs to
	RecordID string // Record identifier, if one was recovered
	Err      error  // Underlying error
}

func (e *RecordError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("record %s of shard %d: %v", e.RecordID, e.ShardID, e.Err)
	}
	return fmt.Sprintf("record of shard %d: %v", e.ShardID, e.Err)
}

func (e *RecordError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidRecord
}

// WriteError represents an I/O failure while appending to a content file or
// provenance journal. Write errors are unrecoverable and abort the run.
type WriteError struct {
	Lang string // Language code of the writer involved
	Path string // File path involved, if known
	Err  error  // Underlying error
}

func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("write failed for %s (%s): %v", e.Lang, e.Path, e.Err)
	}
	return fmt.Sprintf("write failed for %s: %v", e.Lang, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewShard creates a ShardError
func NewShard(shardID int, path string, err error) *ShardError {
	return &ShardError{
		ShardID: shardID,
		Path:    path,
		Err:     err,
	}
}

// NewRecord creates a RecordError
func NewRecord(shardID int, recordID string, err error) *RecordError {
	return &RecordError{
		ShardID:  shardID,
		RecordID: recordID,
		Err:      err,
	}
}

// NewWrite creates a WriteError
func NewWrite(lang, path string, err error) *WriteError {
	return &WriteError{
		Lang: lang,
		Path: path,
		Err:  err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
