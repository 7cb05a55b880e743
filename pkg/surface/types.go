// Package surface maps MIDI control surface positions to named rendering parameters
package surface

import (
	"sort"
	"strconv"
)

// DefaultValue is returned for controls that have not been touched yet.
// 0.5 is the center position of most faders and knobs.
const DefaultValue = 0.5

// Key addresses a single control on a single device
type Key struct {
	Device  string // Device name as reported by the MIDI port
	Control int    // Flat control number (CC number)
}

// ControlValueMap is a read-only view of normalized control values
type ControlValueMap interface {
	Value(device string, control int) (float64, bool)
}

// Values is a snapshot of control values keyed by device and control number
type Values map[Key]float64

// Value returns the stored value for a control
func (v Values) Value(device string, control int) (float64, bool) {
	value, ok := v[Key{Device: device, Control: control}]
	return value, ok
}

// ControlID is a two-digit control identifier: the first digit is the
// 1-based column, the second the 0-based row counted from the bottom.
type ControlID string

// Control converts an integer such as 21 into a ControlID
func Control(n int) ControlID {
	return ControlID(strconv.Itoa(n))
}

// Transform maps a looked-up value to a parameter value
type Transform func(float64) float64

// Identity returns the value unchanged
func Identity(v float64) float64 {
	return v
}

// Affine returns a transform computing v*scale + offset
func Affine(scale, offset float64) Transform {
	return func(v float64) float64 {
		return v*scale + offset
	}
}

// Formula produces one named parameter from one control
type Formula struct {
	Control   ControlID
	Transform Transform // nil means Identity
}

// Apply runs the formula's transform on v
func (f Formula) Apply(v float64) float64 {
	if f.Transform == nil {
		return v
	}
	return f.Transform(v)
}

// ParameterSet holds computed parameters keyed by name
type ParameterSet map[string]float64

// Names returns the parameter names in sorted order
func (p ParameterSet) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
