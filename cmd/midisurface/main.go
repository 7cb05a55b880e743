// Package main is the entry point for midisurface CLI
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/james-see/midisurface/pkg/api"
	"github.com/james-see/midisurface/pkg/listener"
	"github.com/james-see/midisurface/pkg/surface"
	"github.com/james-see/midisurface/pkg/surface/devices"
	"github.com/james-see/midisurface/pkg/tui"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	deviceName   string
	presetFile   string
	debug        bool
	setControls  []string
	setValues    []string
	replayFile   string
	recordFile   string
	midiPort     string
	interval     time.Duration
	serverPort   int
	defaultValue float64
)

var logger = slog.Default()

func main() {
	defer midi.CloseDriver()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midisurface",
	Short: "Map MIDI control surfaces to rendering parameters",
	Long: `midisurface turns the knobs and faders of a MIDI control surface into
named parameters for a rendering layer.

Controls are addressed by two digits: column (from 1) then row (from 0,
bottom row first). On a Launch Control XL, 21 is the second pan knob.

Examples:
  midisurface devices
  midisurface resolve 21 -d xl
  midisurface params -d xl --set 21=0.8 --set 12=0.25
  midisurface params -d xl --replay moves.mid
  midisurface listen -d xl --port "Launch Control XL"
  midisurface listen -d xl --record moves.mid
  midisurface tui
  midisurface serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(debug)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List device presets",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <control>...",
	Short: "Resolve control identifiers to control numbers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <control>",
	Short: "Look up one control value",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Compute the parameter set of a preset",
	Args:  cobra.NoArgs,
	RunE:  runParams,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print live parameter sets from a MIDI input",
	Args:  cobra.NoArgs,
	RunE:  runListen,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal monitor",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "xl", "Device preset name or alias")
	rootCmd.PersistentFlags().StringVar(&presetFile, "presets", "", "YAML file with additional presets")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every control change")

	// lookup command
	lookupCmd.Flags().StringArrayVar(&setControls, "set", nil, "Control value as <control>=<value>, e.g. 21=0.8")
	lookupCmd.Flags().StringArrayVar(&setValues, "cc", nil, "Value by control number as <cc>=<value>, e.g. 50=0.8")
	lookupCmd.Flags().StringVar(&replayFile, "replay", "", "Standard MIDI File whose control changes are applied first")
	lookupCmd.Flags().Float64Var(&defaultValue, "default", surface.DefaultValue, "Value for controls that were never set")

	// params command
	paramsCmd.Flags().StringArrayVar(&setControls, "set", nil, "Control value as <control>=<value>, e.g. 21=0.8")
	paramsCmd.Flags().StringArrayVar(&setValues, "cc", nil, "Value by control number as <cc>=<value>, e.g. 50=0.8")
	paramsCmd.Flags().StringVar(&replayFile, "replay", "", "Standard MIDI File whose control changes are applied first")

	// listen command
	listenCmd.Flags().StringVar(&midiPort, "port", "", "MIDI input port (default: device name)")
	listenCmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "How often to print the parameter set")
	listenCmd.Flags().StringVar(&recordFile, "record", "", "Write received control changes to this .mid file on exit")

	// tui command
	tuiCmd.Flags().StringVar(&midiPort, "port", "", "MIDI input port to listen on (default: none)")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")
	serveCmd.Flags().StringVar(&midiPort, "midi-port", "", "MIDI input port feeding /live (default: none)")

	// Add commands
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// initLogger configures the shared slog logger
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func getRegistry() (*devices.Registry, error) {
	reg := devices.Default()
	if presetFile != "" {
		if _, err := devices.LoadInto(reg, presetFile); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func getPreset() (*devices.Registry, *surface.Preset, error) {
	reg, err := getRegistry()
	if err != nil {
		return nil, nil, err
	}
	preset, err := reg.Get(deviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (available: %s)", err, strings.Join(reg.Names(), ", "))
	}
	return reg, preset, nil
}

func runDevices(cmd *cobra.Command, args []string) error {
	reg, err := getRegistry()
	if err != nil {
		return err
	}
	for _, p := range reg.Presets() {
		fmt.Print(describePreset(p))
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	_, preset, err := getPreset()
	if err != nil {
		return err
	}
	for _, arg := range args {
		number, err := surface.ResolveControlNumber(surface.ControlID(arg), preset.Layout)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %d\n", arg, number)
	}
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	_, preset, err := getPreset()
	if err != nil {
		return err
	}
	store, err := buildStore(preset)
	if err != nil {
		return err
	}

	v, err := surface.NewMapper(preset.Layout, store.Snapshot()).ValueOr(surface.ControlID(args[0]), defaultValue)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %g\n", args[0], v)
	return nil
}

func runParams(cmd *cobra.Command, args []string) error {
	_, preset, err := getPreset()
	if err != nil {
		return err
	}
	store, err := buildStore(preset)
	if err != nil {
		return err
	}

	_, params, err := preset.Apply(store.Snapshot())
	if err != nil {
		return err
	}
	fmt.Print(formatParameters(params))
	return nil
}

// buildStore collects the values given on the command line
func buildStore(preset *surface.Preset) (*surface.Store, error) {
	store := surface.NewStore()

	if replayFile != "" {
		n, err := listener.ReplayFile(replayFile, preset.Name(), store)
		if err != nil {
			return nil, err
		}
		logger.Debug("replayed control changes", "file", replayFile, "count", n)
	}
	if err := applyAssignments(store, preset, setValues, false); err != nil {
		return nil, err
	}
	if err := applyAssignments(store, preset, setControls, true); err != nil {
		return nil, err
	}
	return store, nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports := listener.Ports()
	if len(ports) == 0 {
		fmt.Println("No MIDI input ports found")
		return nil
	}
	for _, name := range ports {
		fmt.Println(name)
	}
	return nil
}

func runListen(cmd *cobra.Command, args []string) error {
	_, preset, err := getPreset()
	if err != nil {
		return err
	}

	store := surface.NewStore()
	opts := []listener.Option{listener.WithLogger(logger), listener.WithPreset(preset)}
	var rec *listener.Recorder
	if recordFile != "" {
		rec = listener.NewRecorder()
		opts = append(opts, listener.WithRecorder(rec))
	}
	l := listener.New(store, opts...)
	defer l.Close()

	if err := l.ListenPort(preset.Name(), midiPort); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			if rec == nil {
				return nil
			}
			l.Close()
			if err := rec.WriteFile(recordFile); err != nil {
				return err
			}
			fmt.Printf("Recorded %d control changes to %s\n", rec.Len(), recordFile)
			return nil
		case <-ticker.C:
			updated := store.Updated()
			if updated.Equal(last) {
				continue
			}
			last = updated

			_, params, err := preset.Apply(store.Snapshot())
			if err != nil {
				return err
			}
			fmt.Print(formatParameters(params))
			fmt.Println()
		}
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	reg, err := getRegistry()
	if err != nil {
		return err
	}

	opts := tui.Options{Registry: reg, Store: surface.NewStore(), Port: midiPort}
	if midiPort != "" {
		// the TUI owns the terminal, keep the listener quiet
		quiet := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		opts.Listener = listener.New(opts.Store, listener.WithLogger(quiet))
		defer opts.Listener.Close()
	}
	return tui.Run(opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	reg, err := getRegistry()
	if err != nil {
		return err
	}

	var store *surface.Store
	if midiPort != "" {
		_, preset, err := getPreset()
		if err != nil {
			return err
		}
		store = surface.NewStore()
		l := listener.New(store, listener.WithLogger(logger), listener.WithPreset(preset))
		defer l.Close()
		if err := l.ListenPort(preset.Name(), midiPort); err != nil {
			return err
		}
	}

	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, reg, store)
}
