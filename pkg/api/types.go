package api

import (
	"github.com/james-see/midisurface/pkg/surface"
)

// DeviceInfo describes a preset
type DeviceInfo struct {
	Name         string            `json:"name"`
	Aliases      []string          `json:"aliases,omitempty"`
	ColumnStarts []int             `json:"column_starts"`
	Columns      int               `json:"columns"`
	Parameters   map[string]string `json:"parameters"` // parameter name -> control identifier
}

// ResolveRequest asks for the control number of an identifier
type ResolveRequest struct {
	Device  string `json:"device" binding:"required"`
	Control string `json:"control" binding:"required"`
}

// ResolveResponse carries a resolved control number
type ResolveResponse struct {
	Device  string `json:"device"`
	Control string `json:"control"`
	Number  int    `json:"number"`
}

// LookupRequest asks for one control value. Values are keyed by control
// number, Controls by two-digit identifier.
type LookupRequest struct {
	Device   string             `json:"device" binding:"required"`
	Control  string             `json:"control" binding:"required"`
	Values   map[int]float64    `json:"values"`
	Controls map[string]float64 `json:"controls"`
	Default  *float64           `json:"default"`
}

// LookupResponse carries a looked-up value
type LookupResponse struct {
	Device  string  `json:"device"`
	Control string  `json:"control"`
	Value   float64 `json:"value"`
}

// ParametersRequest asks for a preset's parameter set
type ParametersRequest struct {
	Device   string             `json:"device" binding:"required"`
	Values   map[int]float64    `json:"values"`
	Controls map[string]float64 `json:"controls"`
}

// ParametersResponse carries a computed parameter set
type ParametersResponse struct {
	Device     string               `json:"device"`
	Parameters surface.ParameterSet `json:"parameters"`
	Values     map[int]float64      `json:"values,omitempty"`
}

func deviceInfo(p *surface.Preset) DeviceInfo {
	params := make(map[string]string, len(p.Formulas))
	for name, f := range p.Formulas {
		params[name] = string(f.Control)
	}
	columns := p.Columns
	if columns == 0 {
		columns = surface.MaxColumns
	}
	return DeviceInfo{
		Name:         p.Name(),
		Aliases:      p.Aliases,
		ColumnStarts: p.Layout.ColumnStarts(),
		Columns:      columns,
		Parameters:   params,
	}
}
