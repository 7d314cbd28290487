package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/webinline/internal/inline"
	"github.com/wolfeidau/webinline/internal/logger"
)

// InlineCmd rewrites the HTML documents of a build directory into self-contained pages.
type InlineCmd struct {
	Dir      string   `help:"directory containing the built HTML documents" default:"./build" env:"WEBINLINE_DIR"`
	Pattern  string   `help:"glob matched against documents in the directory (non-recursive)" default:"*.html"`
	Root     string   `help:"directory that root-relative references resolve against (default: --dir)" env:"WEBINLINE_ROOT"`
	Ignore   []string `help:"asset extensions that are never inlined" default:"png,jpg,jpeg,gif,svg,ico,webp,avif,bmp"`
	Compress bool     `help:"minify inlined scripts and stylesheets" default:"false" env:"WEBINLINE_COMPRESS"`
}

func (c *InlineCmd) config() inline.Config {
	return inline.Config{
		Dir:      c.Dir,
		Pattern:  c.Pattern,
		Root:     c.Root,
		Ignore:   c.Ignore,
		Compress: c.Compress,
	}
}

func (c *InlineCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Str("dir", c.Dir).Bool("compress", c.Compress).Msg("Starting inline")

	result, err := inline.New(c.config()).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to inline assets: %w", err)
	}

	changed := 0
	for _, doc := range result.Documents {
		if doc.Changed {
			changed++
		}
	}

	log.Info().Int("documents", len(result.Documents)).Int("changed", changed).Msg("Inline complete")
	return nil
}
