package pipeline

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/corpusops/corpusgen/core/errors"
	"github.com/corpusops/corpusgen/internal/identifiers"
	"github.com/corpusops/corpusgen/internal/lang"
	"github.com/corpusops/corpusgen/internal/logging"
	"github.com/corpusops/corpusgen/internal/sources"
)

// minLineRunes is the boilerplate threshold: lines whose character count
// does not exceed it are dropped before classification.
const minLineRunes = 100

// RecordProcessor turns one raw record into a Document of (sentence,
// language) pairs whose order matches the original line order in the body.
type RecordProcessor struct {
	cls     identifiers.Classifier
	workers int
}

// NewRecordProcessor creates a processor classifying candidate lines with
// at most workers concurrent calls.
func NewRecordProcessor(cls identifiers.Classifier, workers int) *RecordProcessor {
	if workers < 1 {
		workers = 1
	}
	return &RecordProcessor{cls: cls, workers: workers}
}

// Process decodes the record body, filters out short lines, classifies the
// rest and returns the surviving sentences in body order.
//
// Classification runs across multiple workers; results are restored to
// input order by index before the Document is built. A nil error with an
// empty Document means every line was filtered, which is intentional loss.
func (p *RecordProcessor) Process(rec *sources.RawRecord) (*Document, error) {
	if !utf8.Valid(rec.Body) {
		return nil, errors.Wrap(errors.ErrInvalidRecord, "body not valid UTF-8")
	}

	candidates := splitLongLines(string(rec.Body))

	// Index-addressed results keep the ordering contract regardless of
	// which worker finishes first.
	results := make([]*identifiers.Identification, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, line := range candidates {
		g.Go(func() error {
			id, err := p.cls.Predict(line)
			if err != nil {
				// Treated the same as no prediction.
				logging.Debug("prediction failed", "record_id", rec.ID(), "error", err.Error())
				return nil
			}
			results[i] = id
			return nil
		})
	}
	g.Wait()

	doc := &Document{
		RecordID: rec.ID(),
		Headers:  rec.Headers,
	}
	for i, id := range results {
		if id == nil {
			continue
		}
		if !lang.Supported(id.Label) {
			logging.UnknownLabel(id.Label, "record_id", rec.ID())
			continue
		}
		doc.Sentences = append(doc.Sentences, Sentence{Text: candidates[i], ID: *id})
	}

	return doc, nil
}

// splitLongLines splits body into lines and keeps those whose character
// count exceeds the boilerplate threshold. Line endings are stripped; a
// trailing newline does not produce an empty last line.
func splitLongLines(body string) []string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if utf8.RuneCountInString(line) > minLineRunes {
			kept = append(kept, line)
		}
	}
	return kept
}
