package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/app"
	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/config"
	"github.com/wolfeidau/escuela/internal/screen"
	"github.com/wolfeidau/escuela/internal/telemetry"
)

type Globals struct {
	Debug     bool
	Version   string
	Telemetry bool
	Config    config.Flags

	// Out, Err and In default to the process streams.
	Out io.Writer
	Err io.Writer
	In  io.Reader

	flash *screen.Recorder
	input *bufio.Reader
}

func (g *Globals) stdout() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Globals) stderr() io.Writer {
	if g.Err == nil {
		return os.Stderr
	}
	return g.Err
}

// readLine reads one line of user input.
func (g *Globals) readLine() (string, error) {
	if g.input == nil {
		in := g.In
		if in == nil {
			in = os.Stdin
		}
		g.input = bufio.NewReader(in)
	}

	line, err := g.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Open loads the configuration and wires the application. Screen outcomes
// are collected and printed by report.
func (g *Globals) Open() (*app.App, error) {
	cfg, err := g.Config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	g.flash = &screen.Recorder{}

	return app.New(cfg, app.WithNotifier(g.flash), app.WithDebug(g.Debug))
}

// StartTelemetry initialises the exporters when enabled. The returned
// function flushes them.
func (g *Globals) StartTelemetry(ctx context.Context) func() {
	if !g.Telemetry {
		return func() {}
	}

	shutdown, err := telemetry.InitTelemetry(ctx, "escuela-cli", g.Version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// report prints the collected screen messages. When the action failed the
// last error message replaces err, so the user sees the friendly text once.
func (g *Globals) report(err error) error {
	if g.flash == nil {
		return err
	}

	var lastError string
	for _, m := range g.flash.Drain() {
		switch m.Level {
		case screen.LevelSuccess:
			fmt.Fprintln(g.stdout(), m.Text)
		case screen.LevelError:
			lastError = m.Text
		}
	}

	if err != nil && lastError != "" {
		return errors.New(lastError)
	}
	return err
}

// enter runs the route guard for path, as a navigation would.
func enter(ctx context.Context, a *app.App, path string) error {
	verdict := a.Guard.Check(ctx, path)

	switch verdict.Decision {
	case auth.Allow:
		return nil
	case auth.DenyUnauthenticated:
		return errors.New("debe iniciar sesión: escuela login <usuario>")
	case auth.DenyForbidden:
		route, _ := auth.LookupRoute(path)
		return fmt.Errorf("su rol no tiene acceso a %s", route.Title)
	default:
		return fmt.Errorf("ruta desconocida: %s", path)
	}
}

// findScreen resolves an entity name, a route path or a route suffix such
// as "materias" or "grado-estudio".
func findScreen(a *app.App, name string) (screen.Screen, error) {
	if s, ok := screen.Find(a.Screens, name); ok {
		return s, nil
	}
	if s, ok := screen.Find(a.Screens, "/app/"+strings.TrimPrefix(name, "/")); ok {
		return s, nil
	}

	names := make([]string, 0, len(a.Screens))
	for _, s := range a.Screens {
		names = append(names, s.Entity())
	}
	return nil, fmt.Errorf("pantalla desconocida %q, opciones: %s", name, strings.Join(names, ", "))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
