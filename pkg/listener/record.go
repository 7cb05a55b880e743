package listener

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// TicksPerQuarter is the resolution of recorded files
	TicksPerQuarter = 480
	// RecordTempo is the tempo written into recorded files, in BPM
	RecordTempo = 120.0
)

// ErrNothingRecorded is returned when writing an empty recording
var ErrNothingRecorded = errors.New("no control changes recorded")

// Recorder captures control changes with their arrival time so they can be
// written to a Standard MIDI File and replayed later.
type Recorder struct {
	mu     sync.Mutex
	start  time.Time
	events []ccEvent
	now    func() time.Time
}

// NewRecorder creates a recorder; time starts at the first control change
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record appends a control change
func (r *Recorder) Record(controller, value uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.start.IsZero() {
		r.start = now
	}
	r.events = append(r.events, ccEvent{
		tick:       durationToTicks(now.Sub(r.start)),
		controller: controller,
		value:      value,
	})
}

// Len returns the number of recorded control changes
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// MIDI renders the recording as a single-track SMF
func (r *Recorder) MIDI() ([]byte, error) {
	r.mu.Lock()
	events := make([]ccEvent, len(r.events))
	copy(events, r.events)
	r.mu.Unlock()

	if len(events) == 0 {
		return nil, ErrNothingRecorded
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track smf.Track

	microsecondsPerBeat := uint32(60000000.0 / RecordTempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	var currentTick int64
	for _, ev := range events {
		track.Add(uint32(ev.tick-currentTick), midi.ControlChange(0, ev.controller, ev.value))
		currentTick = ev.tick
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the recording to a .mid file
func (r *Recorder) WriteFile(path string) error {
	data, err := r.MIDI()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// durationToTicks converts wall time to ticks at RecordTempo
func durationToTicks(d time.Duration) int64 {
	ticksPerSecond := TicksPerQuarter * RecordTempo / 60
	return int64(d.Seconds() * ticksPerSecond)
}
