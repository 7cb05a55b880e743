// Package main is the entry point for the midisurface API server
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/james-see/midisurface/pkg/api"
	"github.com/james-see/midisurface/pkg/listener"
	"github.com/james-see/midisurface/pkg/surface"
	"github.com/james-see/midisurface/pkg/surface/devices"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	presets := flag.String("presets", "", "YAML file with additional presets")
	device := flag.String("device", "xl", "Device preset fed by -midi-port")
	midiPort := flag.String("midi-port", "", "MIDI input port feeding /api/v1/live (default: none)")
	flag.Parse()

	defer midi.CloseDriver()

	if err := run(*port, *presets, *device, *midiPort); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(port int, presets, device, midiPort string) error {
	registry := devices.Default()
	if presets != "" {
		loaded, err := devices.LoadInto(registry, presets)
		if err != nil {
			return err
		}
		slog.Info("loaded presets", "file", presets, "count", len(loaded))
	}

	var store *surface.Store
	if midiPort != "" {
		preset, err := registry.Get(device)
		if err != nil {
			return err
		}
		store = surface.NewStore()
		l := listener.New(store, listener.WithPreset(preset))
		defer l.Close()
		if err := l.ListenPort(preset.Name(), midiPort); err != nil {
			return err
		}
	}

	fmt.Printf("Starting midisurface API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)

	return api.StartServer(port, registry, store)
}
