package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/webinline/internal/bundler"
	"github.com/wolfeidau/webinline/internal/inline"
	"github.com/wolfeidau/webinline/internal/logger"
)

// BundleCmd builds the configured entry points with esbuild.
type BundleCmd struct {
	Config     string `help:"path to the bundler configuration" default:"bundler.yaml" env:"WEBINLINE_BUNDLER_CONFIG"`
	NoOverride bool   `help:"keep the configured chunk splitting instead of emitting one bundle per entry point" default:"false"`
	Inline     bool   `help:"inline assets into the HTML documents of the output directory after building" default:"false"`
}

func (c *BundleCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	cfg, err := loadConfig(c.Config, c.NoOverride)
	if err != nil {
		return err
	}

	metadata, err := bundler.NewBuilder(cfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build js assets: %w", err)
	}

	chunks := metadata.Chunks()
	if !c.NoOverride && len(chunks) > 0 {
		return fmt.Errorf("build emitted %d shared chunks with splitting disabled: %v", len(chunks), chunks)
	}

	for _, entry := range metadata.Entries() {
		scripts, _ := metadata.Scripts(entry)
		log.Info().
			Str("entrypoint", entry).
			Strs("scripts", scripts).
			Int("bytes", metadata.Size(scripts)).
			Msg("Entry point outputs")
	}

	log.Info().Str("output", cfg.OutputDir).Int("outputs", len(metadata.Outputs)).Strs("chunks", chunks).Msg("Bundle complete")

	if !c.Inline {
		return nil
	}

	result, err := inline.New(inline.Config{Dir: cfg.OutputDir}).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to inline assets: %w", err)
	}

	log.Info().Int("documents", len(result.Documents)).Msg("Inline complete")
	return nil
}

func loadConfig(path string, noOverride bool) (*bundler.Config, error) {
	cfg, err := bundler.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if noOverride {
		return cfg, nil
	}

	cfg, err = bundler.Override(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to apply bundler override to %s: %w", path, err)
	}
	return cfg, nil
}
