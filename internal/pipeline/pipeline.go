package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpusops/corpusgen/core/errors"
	"github.com/corpusops/corpusgen/internal/corpus"
	"github.com/corpusops/corpusgen/internal/identifiers"
	"github.com/corpusops/corpusgen/internal/logging"
	"github.com/corpusops/corpusgen/internal/rebuild"
	"github.com/corpusops/corpusgen/internal/sources"
)

// Config wires the pipeline's collaborators together.
type Config struct {
	Source     sources.Source
	Classifier identifiers.Classifier
	Corpus     *corpus.LangFiles
	Rebuild    *rebuild.Writers

	// Concurrency bounds the fan-out at every level (shards, records,
	// sentences). Zero means GOMAXPROCS.
	Concurrency int
}

// Pipeline processes every shard of the source into per-language content
// files and provenance journals.
type Pipeline struct {
	source      sources.Source
	processor   *RecordProcessor
	corpus      *corpus.LangFiles
	rebuild     *rebuild.Writers
	concurrency int

	mu             sync.Mutex
	shardErrs      []error
	skippedRecords int
}

// New creates a Pipeline from cfg.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("pipeline: source is required")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("pipeline: classifier is required")
	}
	if cfg.Corpus == nil || cfg.Rebuild == nil {
		return nil, fmt.Errorf("pipeline: corpus and rebuild writers are required")
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	return &Pipeline{
		source:      cfg.Source,
		processor:   NewRecordProcessor(cfg.Classifier, concurrency),
		corpus:      cfg.Corpus,
		rebuild:     cfg.Rebuild,
		concurrency: concurrency,
	}, nil
}

// Run processes every shard. Shards are processed with no ordering
// guarantee between them; a shard that cannot be read is logged, skipped
// and reported in the final summary. Write failures abort the run.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	paths, err := p.source.List()
	if err != nil {
		return fmt.Errorf("failed to enumerate shards: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for shardID, path := range paths {
		g.Go(func() error {
			if err := p.processShard(ctx, shardID, path); err != nil {
				var writeErr *errors.WriteError
				if errors.As(err, &writeErr) {
					// Unrecoverable: cancel the whole run.
					return err
				}
				logging.ShardSkipped(shardID, path, err)
				p.mu.Lock()
				p.shardErrs = append(p.shardErrs, errors.NewShard(shardID, path, err))
				p.mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, shardErr := range p.shardErrs {
		logging.Error("shard failed", "error", shardErr.Error())
	}
	logging.RunSummary(len(paths), len(p.shardErrs), p.skippedRecords, time.Since(start))

	return nil
}

// ShardErrors returns the per-shard errors aggregated during Run.
func (p *Pipeline) ShardErrors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.shardErrs...)
}

// processShard reads every record of one shard, processes all of them into
// pieces, then dispatches the pieces grouped by language. The join between
// the two phases is deliberate: it trades shard-sized memory for fewer
// per-piece lock acquisitions.
func (p *Pipeline) processShard(ctx context.Context, shardID int, path string) error {
	logging.ShardStart(shardID, path)

	reader, err := p.source.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	var (
		piecesMu sync.Mutex
		pieces   []MergedPiece
	)

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logging.RecordSkipped(shardID, "", err)
			p.countSkippedRecord()
			continue
		}

		g.Go(func() error {
			doc, err := p.processor.Process(rec)
			if err != nil {
				logging.RecordSkipped(shardID, rec.ID(), err)
				p.countSkippedRecord()
				return nil
			}
			merged := doc.MergedPieces()
			if len(merged) == 0 {
				// Every line was filtered out; the document is dropped.
				return nil
			}
			piecesMu.Lock()
			pieces = append(pieces, merged...)
			piecesMu.Unlock()
			return nil
		})
	}
	// Barrier: every record is fully processed before any write occurs.
	g.Wait()

	byLang := make(map[string][]MergedPiece)
	for _, piece := range pieces {
		byLang[piece.Lang] = append(byLang[piece.Lang], piece)
	}

	var dispatch errgroup.Group
	dispatch.SetLimit(p.concurrency)
	for code, batch := range byLang {
		dispatch.Go(func() error {
			return p.writeBatch(shardID, code, batch)
		})
	}
	return dispatch.Wait()
}

// writeBatch appends one language's pieces for one shard and journals
// exactly one ShardResult built from the append results. Each piece's
// provenance entry uses the line range returned by its own append call,
// so content and journal can never disagree.
func (p *Pipeline) writeBatch(shardID int, code string, batch []MergedPiece) error {
	infos := make([]rebuild.RebuildInformation, 0, len(batch))
	for ord, piece := range batch {
		start, err := p.corpus.Append(code, piece.Lines)
		if err != nil {
			return err
		}

		loc := rebuild.Location{
			ShardID:    int64(shardID),
			RecordID:   piece.RecordID,
			LineStart:  start,
			LineEnd:    start + int64(len(piece.Lines)),
			LocInShard: int64(ord),
		}
		meta := rebuild.Metadata{
			Identification:          piece.Identification,
			SentenceIdentifications: piece.SentenceIdentifications,
		}
		infos = append(infos, rebuild.NewRebuildInformation(loc, meta))
	}

	return p.rebuild.Append(code, &rebuild.ShardResult{
		ShardID:     int64(shardID),
		RebuildInfo: infos,
	})
}

func (p *Pipeline) countSkippedRecord() {
	p.mu.Lock()
	p.skippedRecords++
	p.mu.Unlock()
}
