package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/screen"
)

// MenuCmd shows the dashboard of the current role.
type MenuCmd struct{}

func (m *MenuCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	if err := enter(ctx, a, auth.DashboardPath); err != nil {
		return err
	}

	d := screen.BuildDashboard(a.State.Current())

	out := globals.stdout()
	fmt.Fprintf(out, "%s\n%s\n\n", d.Title, d.Subtitle)

	if len(d.Cards) == 0 {
		fmt.Fprintln(out, "No hay módulos disponibles para su rol.")
		return nil
	}

	tw := newTable(out)
	fmt.Fprintln(tw, "PANTALLA\tTÍTULO\tDESCRIPCIÓN")
	for _, card := range d.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", strings.TrimPrefix(card.Path, "/app/"), card.Title, card.Description)
	}
	return tw.Flush()
}

// ListCmd prints the records of a screen.
type ListCmd struct {
	Screen string            `arg:"" help:"Screen name, eg materias or calificaciones"`
	Filter map[string]string `short:"f" help:"Filter as key=value, eg grado=2"`
}

func (l *ListCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	s, err := findScreen(a, l.Screen)
	if err != nil {
		return err
	}

	if err := enter(ctx, a, s.Route().Path); err != nil {
		return err
	}

	table, err := s.Table(ctx, l.Filter)
	if err := globals.report(err); err != nil {
		return err
	}

	printTable(globals, s, table)
	return nil
}

func printTable(globals *Globals, s screen.Screen, table *screen.Table) {
	out := globals.stdout()

	if len(table.Rows) == 0 {
		fmt.Fprintf(out, "No hay registros en %s.\n", s.Route().Title)
		return
	}

	tw := newTable(out)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(table.Headers, "\t")))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row.Cells, "\t"))
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\n%d registro(s). Acciones: %s\n", len(table.Rows), actionList(s.Actions()))
}

func actionList(actions []auth.Action) string {
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}
