package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/webinline/cmd/webinline/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Inline  commands.InlineCmd `cmd:"" default:"withargs" help:"Inline script and stylesheet assets into built HTML documents"`
		Bundle  commands.BundleCmd `cmd:"" help:"Bundle JavaScript with esbuild as a single file per entry point"`
		Config  commands.ConfigCmd `cmd:"" help:"Print the bundler configuration after the override is applied"`
		Debug   bool               `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("webinline"),
		kong.Description("Build-output packaging: single-bundle builds and self-contained HTML pages."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
