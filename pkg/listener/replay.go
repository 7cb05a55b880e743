package listener

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/james-see/midisurface/pkg/surface"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ccEvent is a control change at an absolute tick
type ccEvent struct {
	tick       int64
	controller uint8
	value      uint8
}

// Replay reads a Standard MIDI File and applies every control change to
// store as if it had arrived from device, in tick order across all tracks.
// It returns the number of control changes applied.
func Replay(r io.Reader, device string, store *surface.Store) (int, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return 0, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	var events []ccEvent
	for _, track := range s.Tracks {
		var currentTick int64
		for _, ev := range track {
			currentTick += int64(ev.Delta)

			var channel, controller, value uint8
			if midi.Message(ev.Message).GetControlChange(&channel, &controller, &value) {
				events = append(events, ccEvent{
					tick:       currentTick,
					controller: controller,
					value:      value,
				})
			}
		}
	}

	// Tracks are independent; a later tick on any track wins.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	for _, ev := range events {
		store.Set(device, int(ev.controller), Normalize(ev.value))
	}
	return len(events), nil
}

// ReplayFile replays a .mid file into store
func ReplayFile(path, device string, store *surface.Store) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Replay(f, device, store)
}
