// Package rebuild writes the provenance journal: one Avro container file
// per supported language, holding a stream of ShardResult records that tie
// every written piece back to its shard, record and line range.
package rebuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hamba/avro/v2/ocf"

	"github.com/corpusops/corpusgen/core/errors"
	"github.com/corpusops/corpusgen/internal/identifiers"
	"github.com/corpusops/corpusgen/internal/lang"
)

// Metadata carries piece-level identification plus the per-line
// identifications preserved through merging.
type Metadata struct {
	Identification          identifiers.Identification    `avro:"identification"`
	Annotation              *[]string                     `avro:"annotation"`
	SentenceIdentifications []*identifiers.Identification `avro:"sentence_identifications"`
}

// Location addresses one written piece: its source shard and record, the
// line interval it occupies in the language content file, and its ordinal
// among the pieces emitted for its (shard, language) pair.
//
// Line intervals are half-open: the piece occupies [LineStart, LineEnd).
type Location struct {
	ShardID    int64
	RecordID   string
	LineStart  int64
	LineEnd    int64
	LocInShard int64
}

// RebuildInformation is one provenance entry: a Location joined with its
// Metadata. Entries are immutable once created.
type RebuildInformation struct {
	ShardID    int64    `avro:"shard_id"`
	RecordID   string   `avro:"record_id"`
	LineStart  int64    `avro:"line_start"`
	LineEnd    int64    `avro:"line_end"`
	LocInShard int64    `avro:"loc_in_shard"`
	Metadata   Metadata `avro:"metadata"`
}

// NewRebuildInformation joins a Location with its Metadata.
func NewRebuildInformation(loc Location, meta Metadata) RebuildInformation {
	return RebuildInformation{
		ShardID:    loc.ShardID,
		RecordID:   loc.RecordID,
		LineStart:  loc.LineStart,
		LineEnd:    loc.LineEnd,
		LocInShard: loc.LocInShard,
		Metadata:   meta,
	}
}

// Location returns the entry's Location part.
func (r *RebuildInformation) Location() Location {
	return Location{
		ShardID:    r.ShardID,
		RecordID:   r.RecordID,
		LineStart:  r.LineStart,
		LineEnd:    r.LineEnd,
		LocInShard: r.LocInShard,
	}
}

// ShardResult groups every provenance entry produced for one
// (shard, language) pair. It is the unit of journal serialization.
type ShardResult struct {
	ShardID     int64                `avro:"shard_id"`
	RebuildInfo []RebuildInformation `avro:"rebuild_info"`
}

// JournalWriter appends ShardResults to one language's journal file.
type JournalWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
	enc  *ocf.Encoder
}

// newJournalWriter creates the journal file at path. The container header
// (schema, codec, version metadata) is written immediately, so a journal
// that never receives a ShardResult is still a valid, decodable file.
func newJournalWriter(path string) (*JournalWriter, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}

	enc, err := ocf.NewEncoderWithSchema(Schema(), file,
		ocf.WithCodec(ocf.Snappy),
		ocf.WithMetadata(map[string][]byte{
			schemaMetadataKey: []byte(SchemaVersion),
		}),
	)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to create journal encoder: %w", err)
	}

	if err := enc.Flush(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write journal header: %w", err)
	}

	return &JournalWriter{path: path, file: file, enc: enc}, nil
}

// Append serializes one ShardResult into the journal and flushes the block.
func (w *JournalWriter) Append(result *ShardResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode shard result: %w", err)
	}
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush journal block: %w", err)
	}
	return nil
}

// Close flushes pending blocks and closes the journal file.
func (w *JournalWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to close journal encoder: %w", err)
	}
	return w.file.Close()
}

// Writers holds one JournalWriter per supported language.
type Writers struct {
	root    string
	writers map[string]*JournalWriter
}

// NewWriters creates one journal file per supported language under root,
// named <code>.avro.
//
// The root must not already contain files: an existing non-empty directory,
// or a regular file at root, fails before any journal file is created. This
// is the safeguard against mixing the provenance of two runs.
func NewWriters(root string) (*Writers, error) {
	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.Wrapf(errors.ErrInvalidDestination, "%s is a regular file", root)
	case err == nil:
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read rebuild destination: %w", err)
		}
		if len(entries) > 0 {
			return nil, errors.Wrapf(errors.ErrDestinationNotEmpty, "rebuild destination %s", root)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create rebuild destination: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to stat rebuild destination: %w", err)
	}

	writers := make(map[string]*JournalWriter, lang.Count())
	for _, code := range lang.Codes {
		w, err := newJournalWriter(filepath.Join(root, code+".avro"))
		if err != nil {
			// Startup-fatal: close whatever was created and bail.
			for _, created := range writers {
				created.Close()
			}
			return nil, err
		}
		writers[code] = w
	}

	return &Writers{root: root, writers: writers}, nil
}

// Append serializes result into the journal of code. Writers for different
// languages never block each other.
func (w *Writers) Append(code string, result *ShardResult) error {
	jw, ok := w.writers[code]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownLang, "no journal for %q", code)
	}
	if err := jw.Append(result); err != nil {
		return errors.NewWrite(code, jw.path, err)
	}
	return nil
}

// Close closes every journal file, returning the first error encountered.
func (w *Writers) Close() error {
	var firstErr error
	for code, jw := range w.writers {
		if err := jw.Close(); err != nil && firstErr == nil {
			firstErr = errors.NewWrite(code, jw.path, err)
		}
	}
	return firstErr
}

// ReadAll decodes every ShardResult from one journal stream. It is the
// reading half of the journal contract, used to reconstruct per-record
// structure from the flat content files.
func ReadAll(r io.Reader) ([]ShardResult, error) {
	dec, err := ocf.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	var results []ShardResult
	for dec.HasNext() {
		var sr ShardResult
		if err := dec.Decode(&sr); err != nil {
			return nil, fmt.Errorf("failed to decode shard result: %w", err)
		}
		results = append(results, sr)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	return results, nil
}

// ReadJournal decodes every ShardResult from the journal file at path.
func ReadJournal(path string) ([]ShardResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	defer file.Close()

	return ReadAll(file)
}
