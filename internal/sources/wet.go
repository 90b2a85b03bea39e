package sources

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/slyrz/warc"
)

// WetDir is a Source over a directory of gzip-compressed WET shards
// (CommonCrawl text extractions, one .warc.wet.gz file per shard).
type WetDir struct {
	root string
}

// NewWetDir creates a Source reading shards from root.
func NewWetDir(root string) *WetDir {
	return &WetDir{root: root}
}

// List returns the paths of every .gz file directly under the root, sorted.
func (w *WetDir) List() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".gz") {
			continue
		}
		paths = append(paths, filepath.Join(w.root, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// Open opens one WET shard for sequential reading.
func (w *WetDir) Open(path string) (RecordReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard: %w", err)
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}

	wr, err := warc.NewReaderMode(gz, warc.SequentialMode)
	if err != nil {
		gz.Close()
		file.Close()
		return nil, fmt.Errorf("failed to open WARC stream: %w", err)
	}

	return &wetReader{file: file, gz: gz, warc: wr}, nil
}

// wetReader reads conversion records out of one WET shard.
type wetReader struct {
	file *os.File
	gz   *gzip.Reader
	warc *warc.Reader

	// broken marks the stream as unrecoverable after a read error; the
	// next call returns io.EOF so the shard terminates cleanly.
	broken bool
}

// Next returns the next conversion record. WET files open with a warcinfo
// record and may carry other non-conversion entries; those are skipped.
func (r *wetReader) Next() (*RawRecord, error) {
	if r.broken {
		return nil, io.EOF
	}

	for {
		record, err := r.warc.ReadRecord()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			r.broken = true
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if record.Header.Get("warc-type") != "conversion" {
			// Content must be drained in sequential mode.
			if _, err := io.Copy(io.Discard, record.Content); err != nil {
				r.broken = true
				return nil, fmt.Errorf("failed to skip record body: %w", err)
			}
			continue
		}

		body, err := io.ReadAll(record.Content)
		if err != nil {
			r.broken = true
			return nil, fmt.Errorf("failed to read record body: %w", err)
		}

		headers := make(map[string]string, len(record.Header))
		for key, value := range record.Header {
			headers[key] = value
		}
		if headers["warc-record-id"] == "" {
			// Rare in practice, but a record without an id would be
			// impossible to tie back from the rebuild journal.
			headers["warc-record-id"] = "urn:uuid:" + uuid.NewString()
		}

		return &RawRecord{Headers: headers, Body: body}, nil
	}
}

// Close releases the underlying gzip stream and file handle.
func (r *wetReader) Close() error {
	gzErr := r.gz.Close()
	fileErr := r.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
