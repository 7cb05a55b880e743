package surface

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// LookupFunc returns the current value of a control on a fixed device
type LookupFunc func(id ControlID) (float64, error)

// Lookup resolves id against layout and reads (device, control) from
// values. Controls missing from values return def, which may lie outside
// [0, 1].
func Lookup(device string, id ControlID, layout DeviceLayout, values ControlValueMap, def float64) (float64, error) {
	control, err := ResolveControlNumber(id, layout)
	if err != nil {
		return 0, err
	}
	if values == nil {
		return def, nil
	}
	if v, ok := values.Value(device, control); ok {
		return v, nil
	}
	return def, nil
}

// Mapper is a lookup bound to one device layout and one value snapshot
type Mapper struct {
	layout DeviceLayout
	values ControlValueMap
}

// NewMapper creates a Mapper reading values for the layout's device
func NewMapper(layout DeviceLayout, values ControlValueMap) *Mapper {
	return &Mapper{layout: layout, values: values}
}

// Bind returns the lookup closure for a layout, defaulting to DefaultValue
func Bind(layout DeviceLayout, values ControlValueMap) LookupFunc {
	return NewMapper(layout, values).Value
}

// Layout returns the mapper's device layout
func (m *Mapper) Layout() DeviceLayout {
	return m.layout
}

// Value looks up a control, falling back to DefaultValue
func (m *Mapper) Value(id ControlID) (float64, error) {
	return m.ValueOr(id, DefaultValue)
}

// ValueOr looks up a control, falling back to def
func (m *Mapper) ValueOr(id ControlID, def float64) (float64, error) {
	return Lookup(m.layout.name, id, m.layout, m.values, def)
}

// BuildParameterSet evaluates every formula through lookup. Formulas are
// evaluated in name order so the first reported error is stable.
func BuildParameterSet(lookup LookupFunc, formulas map[string]Formula) (ParameterSet, error) {
	if lookup == nil {
		return nil, errors.New("nil lookup")
	}

	names := make([]string, 0, len(formulas))
	for name := range formulas {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(ParameterSet, len(formulas))
	for _, name := range names {
		formula := formulas[name]
		v, err := lookup(formula.Control)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		params[name] = formula.Apply(v)
	}
	return params, nil
}

// Preset pairs a device layout with the parameters derived from it
type Preset struct {
	Layout   DeviceLayout
	Aliases  []string
	Columns  int // physical columns per row, 0 means MaxColumns
	Formulas map[string]Formula
}

// Name returns the device name of the preset
func (p *Preset) Name() string {
	return p.Layout.Name()
}

// Matches reports whether name refers to this preset, ignoring case
func (p *Preset) Matches(name string) bool {
	if strings.EqualFold(name, p.Name()) {
		return true
	}
	for _, alias := range p.Aliases {
		if strings.EqualFold(name, alias) {
			return true
		}
	}
	return false
}

// Validate resolves every formula control against the layout
func (p *Preset) Validate() error {
	if p.Name() == "" {
		return errors.New("preset has no device name")
	}
	names := make([]string, 0, len(p.Formulas))
	for name := range p.Formulas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := ResolveControlNumber(p.Formulas[name].Control, p.Layout); err != nil {
			return fmt.Errorf("preset %s, parameter %s: %w", p.Name(), name, err)
		}
	}
	return nil
}

// Apply binds the preset to a value snapshot and computes its parameters
func (p *Preset) Apply(values ControlValueMap) (*Mapper, ParameterSet, error) {
	m := NewMapper(p.Layout, values)
	params, err := BuildParameterSet(m.Value, p.Formulas)
	if err != nil {
		return nil, nil, err
	}
	return m, params, nil
}

// Controls returns every physical control of the preset, bottom row first
func (p *Preset) Controls() []ControlID {
	columns := p.columns()
	var ids []ControlID
	for row := 0; row < p.Layout.Rows() && row <= 9; row++ {
		for column := 1; column <= columns; column++ {
			ids = append(ids, ControlID([]byte{byte('0' + column), byte('0' + row)}))
		}
	}
	return ids
}

// Identify maps a flat control number to a physical control of the preset
func (p *Preset) Identify(control int) (ControlID, bool) {
	return p.Layout.identify(control, p.columns())
}

func (p *Preset) columns() int {
	if p.Columns <= 0 || p.Columns > MaxColumns {
		return MaxColumns
	}
	return p.Columns
}
