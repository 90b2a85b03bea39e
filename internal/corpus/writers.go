// Package corpus owns the per-language content files: one append-only text
// file per supported language, each with its own lock and line counter.
package corpus

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/corpusops/corpusgen/core/errors"
	"github.com/corpusops/corpusgen/internal/lang"
)

// langWriter is the locked (counter, writer) pair of one language.
// The content append and the counter advance happen under one critical
// section, so no two pieces of the same language can observe overlapping
// line ranges.
type langWriter struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	buf   *bufio.Writer
	hash  *blake3.Hasher
	out   io.Writer
	lines int64
	bytes int64
}

// append writes the given lines and returns the line number of the first.
func (w *langWriter) append(lines []string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := w.lines
	for _, line := range lines {
		n, err := io.WriteString(w.out, line)
		if err != nil {
			return 0, err
		}
		w.bytes += int64(n)
		if _, err := io.WriteString(w.out, "\n"); err != nil {
			return 0, err
		}
		w.bytes++
	}
	w.lines += int64(len(lines))

	return start, nil
}

func (w *langWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// LangStats summarizes one language's content file at the end of a run.
type LangStats struct {
	Lines  int64  `json:"lines"`
	Bytes  int64  `json:"bytes"`
	BLAKE3 string `json:"blake3"`
}

// Manifest describes a completed run: identity, timing and per-language
// content statistics with digests.
type Manifest struct {
	RunID      string               `json:"run_id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Languages  map[string]LangStats `json:"languages"`
	TotalLines int64                `json:"total_lines"`
	TotalBytes int64                `json:"total_bytes"`
}

// LangFiles holds one content writer per supported language.
// Writers for different languages never block each other.
type LangFiles struct {
	root    string
	runID   string
	started time.Time
	writers map[string]*langWriter
}

// NewLangFiles creates the content destination and one <code>.txt file per
// supported language. Files for languages that never receive a piece stay
// empty.
func NewLangFiles(root string) (*LangFiles, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content destination: %w", err)
	}

	writers := make(map[string]*langWriter, lang.Count())
	for _, code := range lang.Codes {
		path := filepath.Join(root, code+".txt")
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			for _, created := range writers {
				created.close()
			}
			return nil, fmt.Errorf("failed to create content file for %s: %w", code, err)
		}

		buf := bufio.NewWriter(file)
		hash := blake3.New()
		writers[code] = &langWriter{
			path: path,
			file: file,
			buf:  buf,
			hash: hash,
			out:  io.MultiWriter(buf, hash),
		}
	}

	return &LangFiles{
		root:    root,
		runID:   uuid.NewString(),
		started: time.Now().UTC(),
		writers: writers,
	}, nil
}

// Append atomically appends the piece's lines to the content file of code
// and returns the line number the piece starts at. The piece occupies the
// half-open interval [start, start+len(lines)).
func (l *LangFiles) Append(code string, lines []string) (int64, error) {
	w, ok := l.writers[code]
	if !ok {
		// RecordProcessor filters unknown labels; reaching this is a
		// logic error, not a runtime path.
		return 0, errors.Wrapf(errors.ErrUnknownLang, "no content file for %q", code)
	}

	start, err := w.append(lines)
	if err != nil {
		return 0, errors.NewWrite(code, w.path, err)
	}
	return start, nil
}

// Lines returns the current line counter of code.
func (l *LangFiles) Lines(code string) int64 {
	w, ok := l.writers[code]
	if !ok {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// RunID returns the run identifier recorded in the manifest.
func (l *LangFiles) RunID() string {
	return l.runID
}

// Close flushes and closes every content file, then writes manifest.json
// with per-language line/byte counts and BLAKE3 digests.
func (l *LangFiles) Close() error {
	manifest := Manifest{
		RunID:     l.runID,
		StartedAt: l.started,
		Languages: make(map[string]LangStats, len(l.writers)),
	}

	var firstErr error
	for code, w := range l.writers {
		if err := w.close(); err != nil && firstErr == nil {
			firstErr = errors.NewWrite(code, w.path, err)
		}
		manifest.Languages[code] = LangStats{
			Lines:  w.lines,
			Bytes:  w.bytes,
			BLAKE3: hex.EncodeToString(w.hash.Sum(nil)),
		}
		manifest.TotalLines += w.lines
		manifest.TotalBytes += w.bytes
	}
	if firstErr != nil {
		return firstErr
	}

	manifest.FinishedAt = time.Now().UTC()
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path := filepath.Join(l.root, "manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewWrite("manifest", path, err)
	}

	return nil
}
