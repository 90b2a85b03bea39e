package rebuild

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hamba/avro/v2/ocf"

	"github.com/corpusops/corpusgen/core/errors"
	"github.com/corpusops/corpusgen/internal/identifiers"
	"github.com/corpusops/corpusgen/internal/lang"
)

// sampleResult builds a ShardResult exercising nullable fields: one entry
// with an annotation and a nil sentence identification, one bare entry.
func sampleResult() *ShardResult {
	annotation := []string{"adult", "noisy"}
	return &ShardResult{
		ShardID: 7,
		RebuildInfo: []RebuildInformation{
			NewRebuildInformation(
				Location{ShardID: 7, RecordID: "urn:uuid:aaa", LineStart: 0, LineEnd: 3, LocInShard: 0},
				Metadata{
					Identification: identifiers.Identification{Label: "en", Prob: 0.97},
					Annotation:     &annotation,
					SentenceIdentifications: []*identifiers.Identification{
						{Label: "en", Prob: 0.97},
						nil,
						{Label: "en", Prob: 0.91},
					},
				},
			),
			NewRebuildInformation(
				Location{ShardID: 7, RecordID: "urn:uuid:bbb", LineStart: 3, LineEnd: 4, LocInShard: 1},
				Metadata{
					Identification:          identifiers.Identification{Label: "en", Prob: 0.85},
					SentenceIdentifications: []*identifiers.Identification{{Label: "en", Prob: 0.85}},
				},
			),
		},
	}
}

// TestRoundTrip serializes ShardResults and decodes them back, expecting
// equality, including empty rebuild_info and null optional fields.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		result *ShardResult
	}{
		{"empty rebuild info", &ShardResult{ShardID: 0, RebuildInfo: []RebuildInformation{}}},
		{"nullable fields", sampleResult()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := ocf.NewEncoder(rawSchema, &buf, ocf.WithCodec(ocf.Snappy))
			if err != nil {
				t.Fatalf("failed to create encoder: %v", err)
			}
			if err := enc.Encode(tt.result); err != nil {
				t.Fatalf("failed to encode: %v", err)
			}
			if err := enc.Close(); err != nil {
				t.Fatalf("failed to close encoder: %v", err)
			}

			decoded, err := ReadAll(&buf)
			if err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if len(decoded) != 1 {
				t.Fatalf("got %d results, want 1", len(decoded))
			}
			if decoded[0].ShardID != tt.result.ShardID {
				t.Errorf("shard id = %d, want %d", decoded[0].ShardID, tt.result.ShardID)
			}
			if len(decoded[0].RebuildInfo) != len(tt.result.RebuildInfo) {
				t.Fatalf("got %d entries, want %d", len(decoded[0].RebuildInfo), len(tt.result.RebuildInfo))
			}
			for i, got := range decoded[0].RebuildInfo {
				if !reflect.DeepEqual(got, tt.result.RebuildInfo[i]) {
					t.Errorf("entry %d mismatch:\ngot  %+v\nwant %+v", i, got, tt.result.RebuildInfo[i])
				}
			}
		})
	}
}

// TestNewWritersFreshDirectory verifies that a fresh destination gets
// exactly one valid, empty-but-readable journal per supported language.
func TestNewWritersFreshDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "rebuild")

	writers, err := NewWriters(root)
	if err != nil {
		t.Fatalf("NewWriters() error = %v", err)
	}
	if err := writers.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if len(entries) != lang.Count() {
		t.Fatalf("got %d journal files, want %d", len(entries), lang.Count())
	}

	for _, code := range []string{"en", "fr", "yue"} {
		results, err := ReadJournal(filepath.Join(root, code+".avro"))
		if err != nil {
			t.Fatalf("journal for %s not readable: %v", code, err)
		}
		if len(results) != 0 {
			t.Errorf("journal for %s has %d results, want 0", code, len(results))
		}
	}
}

// TestNewWritersNonEmptyDirectory verifies the empty-destination
// precondition: an existing non-empty root fails before creating any file.
func TestNewWritersNonEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "leftover"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create leftover file: %v", err)
	}

	_, err := NewWriters(root)
	if !errors.Is(err, errors.ErrDestinationNotEmpty) {
		t.Fatalf("NewWriters() error = %v, want ErrDestinationNotEmpty", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("destination has %d entries, want 1 (no journal may be created)", len(entries))
	}
}

// TestNewWritersRegularFile verifies construction fails when the root is a
// regular file.
func TestNewWritersRegularFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "rebuild")
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	_, err := NewWriters(root)
	if !errors.Is(err, errors.ErrInvalidDestination) {
		t.Fatalf("NewWriters() error = %v, want ErrInvalidDestination", err)
	}
}

// TestAppendAndReadBack writes ShardResults through the writer set and
// decodes them from the journal file.
func TestAppendAndReadBack(t *testing.T) {
	root := filepath.Join(t.TempDir(), "rebuild")
	writers, err := NewWriters(root)
	if err != nil {
		t.Fatalf("NewWriters() error = %v", err)
	}

	want := sampleResult()
	if err := writers.Append("en", want); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	second := &ShardResult{ShardID: 8, RebuildInfo: []RebuildInformation{}}
	if err := writers.Append("en", second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := writers.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	results, err := ReadJournal(filepath.Join(root, "en.avro"))
	if err != nil {
		t.Fatalf("ReadJournal() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !reflect.DeepEqual(results[0], *want) {
		t.Errorf("first result mismatch:\ngot  %+v\nwant %+v", results[0], *want)
	}
	if results[1].ShardID != 8 || len(results[1].RebuildInfo) != 0 {
		t.Errorf("second result mismatch: %+v", results[1])
	}
}

// TestAppendUnknownLang verifies the defensive check on the language code.
func TestAppendUnknownLang(t *testing.T) {
	writers, err := NewWriters(filepath.Join(t.TempDir(), "rebuild"))
	if err != nil {
		t.Fatalf("NewWriters() error = %v", err)
	}
	defer writers.Close()

	if err := writers.Append("xx", &ShardResult{}); !errors.Is(err, errors.ErrUnknownLang) {
		t.Errorf("Append(xx) error = %v, want ErrUnknownLang", err)
	}
}

// TestJournalMetadata verifies the container header carries the schema
// version identifier.
func TestJournalMetadata(t *testing.T) {
	root := filepath.Join(t.TempDir(), "rebuild")
	writers, err := NewWriters(root)
	if err != nil {
		t.Fatalf("NewWriters() error = %v", err)
	}
	if err := writers.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	file, err := os.Open(filepath.Join(root, "en.avro"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	defer file.Close()

	dec, err := ocf.NewDecoder(file)
	if err != nil {
		t.Fatalf("failed to open decoder: %v", err)
	}
	if got := string(dec.Metadata()[schemaMetadataKey]); got != SchemaVersion {
		t.Errorf("schema metadata = %q, want %q", got, SchemaVersion)
	}
}

func TestLocationRoundTrip(t *testing.T) {
	loc := Location{ShardID: 1, RecordID: "r", LineStart: 5, LineEnd: 9, LocInShard: 2}
	meta := Metadata{Identification: identifiers.Identification{Label: "fr", Prob: 0.9}}

	info := NewRebuildInformation(loc, meta)
	if got := info.Location(); got != loc {
		t.Errorf("Location() = %+v, want %+v", got, loc)
	}
	if info.Metadata.Identification.Label != "fr" {
		t.Errorf("Metadata not carried: %+v", info.Metadata)
	}
}
