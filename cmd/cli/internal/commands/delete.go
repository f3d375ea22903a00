package commands

import (
	"context"
	"fmt"
	"strings"
)

// DeleteCmd removes a record after confirmation.
type DeleteCmd struct {
	Screen string `arg:"" help:"Screen name, eg materias"`
	ID     int64  `arg:"" help:"Record ID"`
	Yes    bool   `short:"y" help:"Do not ask for confirmation"`
}

func (d *DeleteCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	s, err := findScreen(a, d.Screen)
	if err != nil {
		return err
	}

	if err := enter(ctx, a, s.Route().Path); err != nil {
		return err
	}

	confirm := func(prompt string) bool {
		if d.Yes {
			return true
		}
		fmt.Fprintf(globals.stderr(), "%s [s/N]: ", prompt)
		answer, err := globals.readLine()
		if err != nil {
			return false
		}
		switch strings.ToLower(answer) {
		case "s", "si", "sí", "y", "yes":
			return true
		}
		return false
	}

	deleted, err := s.Remove(ctx, d.ID, confirm)
	if err := globals.report(err); err != nil {
		return err
	}

	if !deleted {
		fmt.Fprintln(globals.stdout(), "Cancelado")
	}
	return nil
}
