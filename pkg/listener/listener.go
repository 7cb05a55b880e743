// Package listener feeds MIDI control change messages into a surface.Store
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/james-see/midisurface/pkg/surface"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// MaxValue is the largest 7-bit controller value
const MaxValue = 127

// Normalize maps a 7-bit controller value to [0, 1]
func Normalize(v uint8) float64 {
	if v >= MaxValue {
		return 1
	}
	return float64(v) / MaxValue
}

// Option configures a Listener
type Option func(*Listener)

// WithLogger sets the logger used for port events and errors
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		l.logger = logger
	}
}

// WithPreset lets debug logs name controls by their identifier
func WithPreset(preset *surface.Preset) Option {
	return func(l *Listener) {
		l.presets[preset.Name()] = preset
	}
}

// WithRecorder also sends every control change to rec
func WithRecorder(rec *Recorder) Option {
	return func(l *Listener) {
		l.recorder = rec
	}
}

// Listener writes normalized controller values into a store
type Listener struct {
	store    *surface.Store
	logger   *slog.Logger
	presets  map[string]*surface.Preset
	recorder *Recorder

	mu    sync.Mutex
	stops map[string]func()
}

// New creates a Listener writing into store
func New(store *surface.Store, opts ...Option) *Listener {
	l := &Listener{
		store:   store,
		logger:  slog.Default(),
		presets: make(map[string]*surface.Preset),
		stops:   make(map[string]func()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the store the listener writes into
func (l *Listener) Store() *surface.Store {
	return l.store
}

// Handle records a control change for device. The MIDI channel is not part
// of the key. It reports whether msg was a control change.
func (l *Listener) Handle(device string, msg midi.Message) bool {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) {
		return false
	}

	l.store.Set(device, int(controller), Normalize(value))
	if l.recorder != nil {
		l.recorder.Record(controller, value)
	}

	if l.logger.Enabled(context.Background(), slog.LevelDebug) {
		attrs := []any{"device", device, "channel", channel, "cc", controller, "value", value}
		if preset, ok := l.presets[device]; ok {
			if id, ok := preset.Identify(int(controller)); ok {
				attrs = append(attrs, "control", string(id))
			}
		}
		l.logger.Debug("control change", attrs...)
	}
	return true
}

// Listen starts receiving from port on behalf of device. A previous
// listener for the same device is stopped first.
func (l *Listener) Listen(device string, port drivers.In) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if stop, ok := l.stops[device]; ok {
		stop()
		delete(l.stops, device)
	}

	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		l.Handle(device, msg)
	}, midi.HandleError(func(listenErr error) {
		l.logger.Warn("MIDI listener error", "device", device, "port", port.String(), "err", listenErr)
	}))
	if err != nil {
		return fmt.Errorf("failed to start listening: %w", err)
	}
	l.stops[device] = stop

	l.logger.Info("listening", "device", device, "port", port.String())
	return nil
}

// ListenPort finds an input port by name and listens on it. An empty
// portName looks for a port named after the device.
func (l *Listener) ListenPort(device, portName string) error {
	if portName == "" {
		portName = device
	}
	in, err := midi.FindInPort(portName)
	if err != nil {
		return fmt.Errorf("can't find input %q: %w", portName, err)
	}
	return l.Listen(device, in)
}

// Devices returns the devices currently being listened to
func (l *Listener) Devices() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.stops))
	for name := range l.stops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops every listener
func (l *Listener) Close() {
	l.mu.Lock()
	stops := l.stops
	l.stops = make(map[string]func())
	l.mu.Unlock()

	for device, stop := range stops {
		stop()
		l.logger.Info("stopped listening", "device", device)
	}
}

// Ports returns the names of the available MIDI input ports
func Ports() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}
