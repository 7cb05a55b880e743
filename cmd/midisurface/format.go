package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/midisurface/pkg/surface"
)

// parseAssignment splits "<key>=<value>"
func parseAssignment(s string) (string, float64, error) {
	key, raw, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", 0, fmt.Errorf("invalid assignment %q: expected <key>=<value>", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value in %q: %w", s, err)
	}
	return key, v, nil
}

// applyAssignments writes assignments into the store. With byIdentifier the
// keys are two-digit control identifiers, otherwise raw control numbers.
func applyAssignments(store *surface.Store, preset *surface.Preset, assignments []string, byIdentifier bool) error {
	for _, a := range assignments {
		key, v, err := parseAssignment(a)
		if err != nil {
			return err
		}

		var number int
		if byIdentifier {
			number, err = surface.ResolveControlNumber(surface.ControlID(key), preset.Layout)
		} else {
			number, err = strconv.Atoi(key)
			if err == nil && (number < 0 || number > 127) {
				err = fmt.Errorf("control number %d out of range 0-127", number)
			}
		}
		if err != nil {
			return err
		}
		store.Set(preset.Name(), number, v)
	}
	return nil
}

func formatParameters(params surface.ParameterSet) string {
	var b strings.Builder
	for _, name := range params.Names() {
		fmt.Fprintf(&b, "%-12s %g\n", name, params[name])
	}
	return b.String()
}

func describePreset(p *surface.Preset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name())
	if len(p.Aliases) > 0 {
		fmt.Fprintf(&b, "  Aliases:  %s\n", strings.Join(p.Aliases, ", "))
	}
	fmt.Fprintf(&b, "  Rows:     %d (starts %v)\n", p.Layout.Rows(), p.Layout.ColumnStarts())

	params := surface.ParameterSet{}
	for name := range p.Formulas {
		params[name] = 0
	}
	for _, name := range params.Names() {
		fmt.Fprintf(&b, "  %-10s <- %s\n", name, p.Formulas[name].Control)
	}
	return b.String()
}
