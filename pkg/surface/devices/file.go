package devices

import (
	"errors"
	"fmt"
	"os"

	"github.com/james-see/midisurface/pkg/surface"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPreset is returned for preset files that cannot be turned into
// presets
var ErrInvalidPreset = errors.New("invalid preset")

// presetFile is the YAML document layout:
//
//	presets:
//	  - name: Launch Control XL
//	    aliases: [xl]
//	    column_starts: [77, 49, 29, 13]
//	    columns: 8
//	    parameters:
//	      fontSize: {control: 12, scale: 2000, offset: 20}
//	      wdth: {control: 11, range: [100, 900]}
type presetFile struct {
	Presets []presetSpec `yaml:"presets"`
}

type presetSpec struct {
	Name         string                   `yaml:"name"`
	Aliases      []string                 `yaml:"aliases"`
	ColumnStarts []int                    `yaml:"column_starts"`
	Columns      int                      `yaml:"columns"`
	Parameters   map[string]parameterSpec `yaml:"parameters"`
}

type parameterSpec struct {
	Control controlField `yaml:"control"`
	Scale   *float64     `yaml:"scale"`
	Offset  float64      `yaml:"offset"`
	Range   []float64    `yaml:"range"`
}

// controlField keeps the literal text of the control so that 12 and "12"
// decode the same way and "01" is not turned into 1
type controlField string

func (c *controlField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: control must be a scalar", node.Line)
	}
	*c = controlField(node.Value)
	return nil
}

// ParseYAML decodes and validates presets from a YAML document
func ParseYAML(data []byte) ([]*surface.Preset, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("%w: no presets defined", ErrInvalidPreset)
	}

	presets := make([]*surface.Preset, 0, len(file.Presets))
	for i, spec := range file.Presets {
		p, err := spec.preset()
		if err != nil {
			return nil, fmt.Errorf("%w: preset %d (%s): %w", ErrInvalidPreset, i, spec.Name, err)
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// LoadFile reads presets from a YAML file
func LoadFile(path string) ([]*surface.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	return ParseYAML(data)
}

// LoadInto reads a preset file and registers every preset in r
func LoadInto(r *Registry, path string) ([]*surface.Preset, error) {
	presets, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, p := range presets {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return presets, nil
}

func (s presetSpec) preset() (*surface.Preset, error) {
	if s.Name == "" {
		return nil, errors.New("missing name")
	}
	if len(s.ColumnStarts) == 0 {
		return nil, errors.New("missing column_starts")
	}
	if s.Columns < 0 || s.Columns > surface.MaxColumns {
		return nil, fmt.Errorf("columns must be between 0 and %d", surface.MaxColumns)
	}

	formulas := make(map[string]surface.Formula, len(s.Parameters))
	for name, param := range s.Parameters {
		transform, err := param.transform()
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		formulas[name] = surface.Formula{
			Control:   surface.ControlID(param.Control),
			Transform: transform,
		}
	}

	p := &surface.Preset{
		Layout:   surface.NewLayout(s.Name, s.ColumnStarts...),
		Aliases:  s.Aliases,
		Columns:  s.Columns,
		Formulas: formulas,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p parameterSpec) transform() (surface.Transform, error) {
	if p.Control == "" {
		return nil, errors.New("missing control")
	}
	if p.Range != nil {
		if p.Scale != nil || p.Offset != 0 {
			return nil, errors.New("range cannot be combined with scale or offset")
		}
		if len(p.Range) != 2 {
			return nil, errors.New("range needs exactly two values")
		}
		lo, hi := p.Range[0], p.Range[1]
		return surface.Affine(hi-lo, lo), nil
	}

	scale := 1.0
	if p.Scale != nil {
		scale = *p.Scale
	}
	if scale == 1 && p.Offset == 0 {
		return surface.Identity, nil
	}
	return surface.Affine(scale, p.Offset), nil
}
