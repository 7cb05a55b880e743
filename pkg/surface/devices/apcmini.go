package devices

import "github.com/james-see/midisurface/pkg/surface"

// APCMiniName is the port name of the Akai APC mini
const APCMiniName = "APC MINI"

// NewAPCMini creates the Akai APC mini preset: eight track faders and the
// master fader on CC 48-56
func NewAPCMini() *surface.Preset {
	return &surface.Preset{
		Layout:   surface.NewLayout(APCMiniName, 48),
		Aliases:  []string{"apc", "apcmini", "apc-mini"},
		Columns:  9,
		Formulas: map[string]surface.Formula{},
	}
}
