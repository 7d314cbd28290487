package inline

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
	"github.com/rs/zerolog/log"
)

// Pipeline turns the HTML documents of a build directory into self-contained pages.
type Pipeline struct {
	config  Config
	inliner *Inliner
}

// DocumentResult summarises the changes made to one document.
type DocumentResult struct {
	Path      string
	Relocated int
	Inlined   []string
	Skipped   []string
	Changed   bool
	Size      int
}

type Result struct {
	Documents []DocumentResult
}

type document struct {
	path string
	mode fs.FileMode
	data []byte
}

// New creates a pipeline, filling unset fields from DefaultConfig.
func New(cfg Config) *Pipeline {
	defaults := DefaultConfig()
	if cfg.Dir == "" {
		cfg.Dir = defaults.Dir
	}
	if cfg.Pattern == "" {
		cfg.Pattern = defaults.Pattern
	}
	if cfg.Root == "" {
		cfg.Root = cfg.Dir
	}
	if cfg.Ignore == nil {
		cfg.Ignore = defaults.Ignore
	}
	if cfg.Replacements == nil {
		cfg.Replacements = defaults.Replacements
	}

	return &Pipeline{
		config:  cfg,
		inliner: NewInliner(cfg.Root, cfg.Ignore, cfg.Compress),
	}
}

// Transform runs the relocate, mark and inline stages over one document held in memory.
func (p *Pipeline) Transform(docPath string, doc []byte) ([]byte, *DocumentResult, error) {
	relocated, moved, err := RelocateDeferredScripts(doc)
	if err != nil {
		return nil, nil, err
	}

	marked := MarkInline(relocated, p.config.Replacements)

	out, inlined, err := p.inliner.Inline(marked, docPath)
	if err != nil {
		return nil, nil, err
	}

	return out, &DocumentResult{
		Path:      docPath,
		Relocated: moved,
		Inlined:   inlined.Inlined,
		Skipped:   inlined.Skipped,
		Changed:   !bytes.Equal(doc, out),
		Size:      len(out),
	}, nil
}

// Run transforms every matching document and then overwrites them. Nothing is
// written unless all documents transform successfully.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	files, err := filepath.Glob(filepath.Join(p.config.Dir, p.config.Pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid document pattern %q: %w", p.config.Pattern, err)
	}

	result := &Result{}
	if len(files) == 0 {
		log.Warn().Str("dir", p.config.Dir).Str("pattern", p.config.Pattern).Msg("No documents found")
		return result, nil
	}

	log.Info().Str("dir", p.config.Dir).Int("documents", len(files)).Msg("Inlining assets")

	docs := make([]document, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat document: %w", err)
		}
		if info.IsDir() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}

		out, docResult, err := p.Transform(path, data)
		if err != nil {
			return nil, fmt.Errorf("failed to inline %s: %w", path, err)
		}

		result.Documents = append(result.Documents, *docResult)
		if docResult.Changed {
			docs = append(docs, document{path: path, mode: info.Mode().Perm(), data: out})
		}
	}

	for _, doc := range docs {
		if err := atomicwriter.WriteFile(doc.path, doc.data, doc.mode); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", doc.path, err)
		}
	}

	for _, doc := range result.Documents {
		log.Info().
			Str("document", doc.Path).
			Int("relocated", doc.Relocated).
			Strs("inlined", doc.Inlined).
			Strs("skipped", doc.Skipped).
			Bool("changed", doc.Changed).
			Int("bytes", doc.Size).
			Msg("Processed document")
	}

	return result, nil
}
