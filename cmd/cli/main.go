package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/cmd/cli/internal/commands"
	"github.com/wolfeidau/escuela/internal/config"
	"github.com/wolfeidau/escuela/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login     commands.LoginCmd    `cmd:"" help:"Log in to the school API"`
		Logout    commands.LogoutCmd   `cmd:"" help:"Log out and forget the stored session"`
		Whoami    commands.WhoamiCmd   `cmd:"" help:"Show the current session"`
		Register  commands.RegisterCmd `cmd:"" help:"Create a user account"`
		Menu      commands.MenuCmd     `cmd:"" help:"Show the dashboard for the current role"`
		List      commands.ListCmd     `cmd:"" help:"List the records of a screen"`
		Create    commands.CreateCmd   `cmd:"" help:"Create a record"`
		Delete    commands.DeleteCmd   `cmd:"" help:"Delete a record"`
		Config    config.Flags         `embed:""`
		Telemetry bool                 `help:"Export traces and metrics over OTLP." env:"ESCUELA_TELEMETRY"`
		Debug     bool                 `help:"Enable debug mode."`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("escuela"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)
	if !cli.Debug {
		// keep stdout and stderr for the user, only problems are logged
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	globals := &commands.Globals{Debug: cli.Debug, Version: version, Telemetry: cli.Telemetry, Config: cli.Config}

	shutdown := globals.StartTelemetry(ctx)
	err := cmd.Run(globals)
	shutdown()

	cmd.FatalIfErrorf(err)
}
