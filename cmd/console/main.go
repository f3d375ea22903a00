package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/cmd/console/internal/commands"
	"github.com/wolfeidau/escuela/internal/config"
	"github.com/wolfeidau/escuela/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool         `help:"Enable debug mode."`
		Config  config.Flags `embed:""`
		Version kong.VersionFlag
		Serve   commands.ConsoleCmd `cmd:"" default:"withargs" help:"Start the web console"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("escuela-console"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Config: cli.Config})
	cmd.FatalIfErrorf(err)
}
