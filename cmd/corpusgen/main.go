// Command corpusgen generates per-language corpus files from web-crawl
// WET shards, with a provenance journal that allows rebuilding the
// original per-record structure.
package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/corpusops/corpusgen/internal/corpus"
	"github.com/corpusops/corpusgen/internal/identifiers"
	"github.com/corpusops/corpusgen/internal/logging"
	"github.com/corpusops/corpusgen/internal/pipeline"
	"github.com/corpusops/corpusgen/internal/rebuild"
	"github.com/corpusops/corpusgen/internal/sources"
)

const version = "0.1.0"

// CLI defines the command-line interface for corpusgen.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" enum:"text,json" default:"text"`

	Run     RunCmd     `cmd:"" help:"Run the corpus generation pipeline"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// RunCmd runs the pipeline over a directory of WET shards.
type RunCmd struct {
	Src        string  `arg:"" help:"Source directory containing .warc.wet.gz shards" type:"existingdir"`
	Dst        string  `required:"" help:"Destination directory for per-language content files" type:"path"`
	RebuildDir string  `name:"rebuild" required:"" help:"Destination directory for provenance journals (must be empty or absent)" type:"path"`
	Threshold  float32 `help:"Minimum classifier confidence" default:"0.8"`
	Jobs       int     `help:"Worker parallelism at every fan-out level (0 = all CPUs)" default:"0"`
}

func (c *RunCmd) Run() error {
	langFiles, err := corpus.NewLangFiles(c.Dst)
	if err != nil {
		return fmt.Errorf("failed to create content destination: %w", err)
	}

	journals, err := rebuild.NewWriters(c.RebuildDir)
	if err != nil {
		langFiles.Close()
		return fmt.Errorf("failed to create provenance destination: %w", err)
	}

	logging.Info("loading language detector")
	classifier := identifiers.Threshold(identifiers.NewLingua(), c.Threshold)

	p, err := pipeline.New(pipeline.Config{
		Source:      sources.NewWetDir(c.Src),
		Classifier:  classifier,
		Corpus:      langFiles,
		Rebuild:     journals,
		Concurrency: c.Jobs,
	})
	if err != nil {
		return err
	}

	logging.Info("starting run",
		"run_id", langFiles.RunID(),
		"src", c.Src,
		"dst", c.Dst,
		"rebuild", c.RebuildDir,
	)

	runErr := p.Run(context.Background())

	// Close both destinations even on failure; close errors on a clean
	// run are write-level and fatal.
	if err := langFiles.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if err := journals.Close(); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("corpusgen %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("corpusgen"),
		kong.Description("Generate per-language corpora from web-crawl WET shards."),
		kong.UsageOnError(),
	)

	logLevel := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]
	logFormat := logging.FormatText
	if CLI.LogFormat == "json" {
		logFormat = logging.FormatJSON
	}
	logging.InitLogger(logLevel, logFormat)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
