// Package sources defines the crawl-archive collaborator contract and the
// WET shard adapter used by the corpusgen binary.
package sources

// RawRecord is one captured document from a crawl archive: a header map
// plus the raw body bytes. Header keys are lowercase.
type RawRecord struct {
	Headers map[string]string
	Body    []byte
}

// ID returns the record identifier from the headers.
func (r *RawRecord) ID() string {
	return r.Headers["warc-record-id"]
}

// RecordReader yields the records of one shard.
//
// Next returns io.EOF after the last record. Any other error is scoped to
// the failed read: callers may keep calling Next, and implementations that
// cannot recover the stream return io.EOF on the following call.
type RecordReader interface {
	Next() (*RawRecord, error)
	Close() error
}

// Source enumerates shard archives and opens them for reading.
// Enumeration order is stable: the index of a path in List is its shard id.
type Source interface {
	List() ([]string, error)
	Open(path string) (RecordReader, error)
}
