package bundler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// Builder runs esbuild according to a bundler configuration.
type Builder struct {
	config *Config
}

// NewBuilder creates a builder for the given configuration
func NewBuilder(cfg *Config) *Builder {
	return &Builder{config: cfg}
}

// Options translates the configuration into esbuild build options. With
// splitting disabled each entry point becomes a single classic-script bundle.
func (b *Builder) Options(entryPoints []string) api.BuildOptions {
	splitting := b.config.Optimization.SplittingEnabled()

	return api.BuildOptions{
		EntryPoints:       entryPoints,
		Bundle:            true,
		Splitting:         splitting,
		Write:             true,
		JSX:               api.JSXAutomatic,
		Outdir:            b.config.OutputDir,
		Format:            cond(splitting, api.FormatESModule, api.FormatIIFE),
		MinifyWhitespace:  b.config.Minify,
		MinifyIdentifiers: b.config.Minify,
		MinifySyntax:      b.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         cond(b.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:          true,
		Loader: map[string]api.Loader{
			".png":  api.LoaderFile,
			".jpg":  api.LoaderFile,
			".gif":  api.LoaderFile,
			".svg":  api.LoaderFile,
			".webp": api.LoaderFile,
		},
	}
}

// Build expands the entry point patterns, runs esbuild, writes the metafile
// and returns the parsed build metadata.
func (b *Builder) Build() (*BuildMetadata, error) {
	entryPoints, err := b.entryPoints()
	if err != nil {
		return nil, err
	}

	log.Info().
		Strs("entrypoints", entryPoints).
		Bool("splitting", b.config.Optimization.SplittingEnabled()).
		Msg("Building assets")

	result := api.Build(b.Options(entryPoints))

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", msg.Text).Msg("Build error")
		}
		return nil, ErrBuildFailed
	}

	for _, msg := range result.Warnings {
		log.Warn().Str("warning", msg.Text).Msg("Build warning")
	}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Msg("Built file")
	}

	if b.config.Metafile != "" {
		if err := os.MkdirAll(filepath.Dir(b.config.Metafile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create metafile directory: %w", err)
		}
		if err := os.WriteFile(b.config.Metafile, []byte(result.Metafile), 0600); err != nil {
			return nil, fmt.Errorf("failed to write metafile: %w", err)
		}
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}

	return &metadata, nil
}

func (b *Builder) entryPoints() ([]string, error) {
	entryPoints := []string{}
	for _, pattern := range b.config.EntryPoints {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid entry point pattern %q: %w", pattern, err)
		}
		entryPoints = append(entryPoints, matches...)
	}

	if len(entryPoints) == 0 {
		return nil, ErrNoEntryPoints
	}
	return entryPoints, nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
