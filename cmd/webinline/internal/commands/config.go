package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/webinline/internal/bundler"
	"github.com/wolfeidau/webinline/internal/logger"
	"gopkg.in/yaml.v3"
)

// ConfigCmd prints the effective bundler configuration.
type ConfigCmd struct {
	Config     string `help:"path to the bundler configuration" default:"bundler.yaml" env:"WEBINLINE_BUNDLER_CONFIG"`
	Format     string `help:"output format" default:"yaml" enum:"yaml,json"`
	NoOverride bool   `help:"print the configuration as loaded" default:"false"`
}

func (c *ConfigCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	cfg, err := loadConfig(c.Config, c.NoOverride)
	if err != nil {
		return err
	}

	return c.write(os.Stdout, cfg)
}

func (c *ConfigCmd) write(w io.Writer, cfg *bundler.Config) error {
	switch c.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %s", c.Format)
	}
}
