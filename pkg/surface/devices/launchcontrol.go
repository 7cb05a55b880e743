// Package devices provides control surface presets
package devices

import "github.com/james-see/midisurface/pkg/surface"

// Launch Control XL constants
const (
	LaunchControlXLName    = "Launch Control XL"
	LaunchControlXLColumns = 8
)

// LaunchControlXLColumnStarts lists the first CC number of each row,
// bottom to top: faders, pan knobs, send B knobs, send A knobs
var LaunchControlXLColumnStarts = []int{77, 49, 29, 13}

// NewLaunchControlXL creates the Novation Launch Control XL preset.
// Its parameters drive a variable font: size, width, weight, slant and
// tracking.
func NewLaunchControlXL() *surface.Preset {
	return &surface.Preset{
		Layout:  surface.NewLayout(LaunchControlXLName, LaunchControlXLColumnStarts...),
		Aliases: []string{"xl", "lcxl", "launchcontrol", "launch-control-xl"},
		Columns: LaunchControlXLColumns,
		Formulas: map[string]surface.Formula{
			"fontSize": {Control: "12", Transform: surface.Affine(2000, 20)},
			"wdth":     {Control: "11", Transform: surface.Identity},
			"wght":     {Control: "21", Transform: surface.Identity},
			"slnt":     {Control: "31", Transform: surface.Identity},
			"tu":       {Control: "22", Transform: surface.Affine(500, -250)},
		},
	}
}
