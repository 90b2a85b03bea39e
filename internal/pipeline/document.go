// Package pipeline turns crawl shards into per-language corpus files and
// provenance journal entries. It drives the shard, record and sentence
// fan-out and the per-shard write dispatch.
package pipeline

import (
	"github.com/corpusops/corpusgen/internal/identifiers"
)

// Sentence is one surviving line of a record with its identification.
type Sentence struct {
	Text string
	ID   identifiers.Identification
}

// Document is one record's surviving sentences in body order, plus the
// record headers. It is transient: consumed immediately into pieces.
type Document struct {
	RecordID  string
	Headers   map[string]string
	Sentences []Sentence
}

// MergedPiece is a maximal contiguous run of same-language sentences
// within one document. LineStart/LineEnd are document-local offsets over
// the surviving sentences, half-open.
type MergedPiece struct {
	Lang      string
	Lines     []string
	RecordID  string
	Headers   map[string]string
	LineStart int
	LineEnd   int

	// Identification is the piece-level prediction, taken from the run's
	// first sentence. SentenceIdentifications keeps every per-line
	// prediction so confidence data survives the merge.
	Identification          identifiers.Identification
	SentenceIdentifications []*identifiers.Identification
}

// MergedPieces groups the document's sentences into maximal contiguous
// same-language runs. A document with no surviving sentences yields nil.
// No smoothing is applied: strictly alternating languages yield one piece
// per sentence.
func (d *Document) MergedPieces() []MergedPiece {
	if len(d.Sentences) == 0 {
		return nil
	}

	var pieces []MergedPiece
	runStart := 0
	for i := 1; i <= len(d.Sentences); i++ {
		if i < len(d.Sentences) && d.Sentences[i].ID.Label == d.Sentences[runStart].ID.Label {
			continue
		}

		run := d.Sentences[runStart:i]
		lines := make([]string, len(run))
		ids := make([]*identifiers.Identification, len(run))
		for j := range run {
			lines[j] = run[j].Text
			id := run[j].ID
			ids[j] = &id
		}

		pieces = append(pieces, MergedPiece{
			Lang:                    run[0].ID.Label,
			Lines:                   lines,
			RecordID:                d.RecordID,
			Headers:                 d.Headers,
			LineStart:               runStart,
			LineEnd:                 i,
			Identification:          run[0].ID,
			SentenceIdentifications: ids,
		})
		runStart = i
	}

	return pieces
}
