package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/escuela/internal/app"
	"github.com/wolfeidau/escuela/internal/console"
	"github.com/wolfeidau/escuela/internal/logger"
	"github.com/wolfeidau/escuela/internal/login"
	"github.com/wolfeidau/escuela/internal/screen"
	"github.com/wolfeidau/escuela/internal/telemetry"
)

type ConsoleCmd struct {
	Listen       string        `help:"HTTP listen address, overrides console.addr" env:"ESCUELA_LISTEN"`
	SessionTTL   time.Duration `help:"operator cookie TTL" default:"12h" env:"ESCUELA_SESSION_TTL"`
	SecureCookie bool          `help:"mark the operator cookie Secure (behind a TLS proxy)" default:"false" env:"ESCUELA_SECURE_COOKIE"`
	Tracing      bool          `help:"enable tracing and metrics export" default:"false" env:"ESCUELA_TRACING"`
}

func (c *ConsoleCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting console")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "escuela-console", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	cfg, err := globals.Config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Listen != "" {
		cfg.Console.Addr = c.Listen
	}

	flash := &screen.Recorder{}
	a, err := app.New(cfg, app.WithNotifier(flash), app.WithDebug(globals.Debug))
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	cookies, err := login.NewCookies(login.NewSecret(), c.SessionTTL, c.SecureCookie)
	if err != nil {
		return fmt.Errorf("failed to initialize operator cookies: %w", err)
	}

	con, err := console.New(a, flash, cookies)
	if err != nil {
		return fmt.Errorf("failed to initialize console: %w", err)
	}

	srv := configureHTTPServer(cfg.Console.Addr, con.Handler())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown console")
		}
	}()

	log.Info().Str("addr", cfg.Console.Addr).Str("api_url", cfg.APIURL).Str("storage", cfg.Storage).Msg("Starting HTTP server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
