package devices

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/james-see/midisurface/pkg/surface"
)

// ErrUnknownDevice is returned when no preset matches a device name
var ErrUnknownDevice = errors.New("unknown device")

// Registry holds presets keyed by device name
type Registry struct {
	mu      sync.RWMutex
	presets map[string]*surface.Preset
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]*surface.Preset)}
}

// Default returns a registry with the built-in presets
func Default() *Registry {
	r := NewRegistry()
	for _, p := range []*surface.Preset{
		NewLaunchControlXL(),
		NewLaunchkeyMini(),
		NewAPCMini(),
	} {
		if err := r.Register(p); err != nil {
			panic(fmt.Sprintf("devices: built-in preset: %v", err))
		}
	}
	return r
}

// Register validates a preset and adds it, replacing any preset with the
// same device name
func (r *Registry) Register(p *surface.Preset) error {
	if p == nil {
		return errors.New("nil preset")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[strings.ToLower(p.Name())] = p
	return nil
}

// Get finds a preset by device name or alias, ignoring case
func (r *Registry) Get(name string) (*surface.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.presets[strings.ToLower(name)]; ok {
		return p, nil
	}
	for _, key := range r.sortedKeys() {
		if p := r.presets[key]; p.Matches(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
}

// Names returns the device names of all presets, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.presets))
	for _, key := range r.sortedKeys() {
		names = append(names, r.presets[key].Name())
	}
	return names
}

// Presets returns all presets sorted by device name
func (r *Registry) Presets() []*surface.Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*surface.Preset, 0, len(r.presets))
	for _, key := range r.sortedKeys() {
		out = append(out, r.presets[key])
	}
	return out
}

func (r *Registry) sortedKeys() []string {
	keys := make([]string, 0, len(r.presets))
	for key := range r.presets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
