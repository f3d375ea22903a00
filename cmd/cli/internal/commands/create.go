package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wolfeidau/escuela/internal/resource"
	"github.com/wolfeidau/escuela/internal/util"
	"gopkg.in/yaml.v3"
)

// CreateCmd creates a record from --set pairs and an optional file.
type CreateCmd struct {
	Screen string            `arg:"" help:"Screen name, eg materias"`
	Set    map[string]string `short:"s" help:"Field value as name=value, eg nombre=Física"`
	File   string            `help:"YAML/JSON file with the field values" type:"path"`
}

func (c *CreateCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	s, err := findScreen(a, c.Screen)
	if err != nil {
		return err
	}

	if err := enter(ctx, a, s.Route().Path); err != nil {
		return err
	}

	fields := resource.Fields{}
	if c.File != "" {
		if fields, err = loadFields(c.File); err != nil {
			return fmt.Errorf("failed to load field file: %w", err)
		}
	}
	// flags take precedence over the file
	for name, value := range c.Set {
		fields[name] = value
	}

	id, err := s.Submit(ctx, fields)
	if err := globals.report(err); err != nil {
		return err
	}

	fmt.Fprintf(globals.stdout(), "ID: %d\n", id)
	return nil
}

func loadFields(path string) (resource.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fields := resource.Fields{}

	// Determine file format by extension
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	// form fields are text, as a browser would send them
	for name, value := range fields {
		switch v := value.(type) {
		case nil, string:
		case time.Time:
			fields[name] = v.Format(util.DateLayout)
		default:
			fields[name] = fmt.Sprint(v)
		}
	}

	return fields, nil
}
