package devices

import "github.com/james-see/midisurface/pkg/surface"

// LaunchkeyMiniName is the port name of the Launchkey Mini
const LaunchkeyMiniName = "Launchkey Mini LK Mini MIDI"

// NewLaunchkeyMini creates the Novation Launchkey Mini preset: one row of
// eight knobs starting at CC 21 and no parameters yet
func NewLaunchkeyMini() *surface.Preset {
	return &surface.Preset{
		Layout:   surface.NewLayout(LaunchkeyMiniName, 21),
		Aliases:  []string{"launchkey", "lkmini", "launchkey-mini"},
		Columns:  8,
		Formulas: map[string]surface.Formula{},
	}
}
