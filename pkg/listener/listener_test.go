package listener

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/james-see/midisurface/pkg/surface"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const xlName = "Launch Control XL"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		value    uint8
		expected float64
	}{
		{0, 0},
		{127, 1},
		{255, 1},
	}
	for _, tt := range tests {
		if got := Normalize(tt.value); got != tt.expected {
			t.Errorf("Normalize(%d) = %v, want %v", tt.value, got, tt.expected)
		}
	}
	if got := Normalize(64); got <= 0.5 || got >= 0.51 {
		t.Errorf("Normalize(64) = %v, want just above 0.5", got)
	}
}

func TestHandle(t *testing.T) {
	store := surface.NewStore()
	preset := &surface.Preset{Layout: surface.NewLayout(xlName, 77, 49, 29, 13), Columns: 8}
	l := New(store, WithLogger(quietLogger()), WithPreset(preset))

	if l.Store() != store {
		t.Fatal("Store() did not return the configured store")
	}

	tests := []struct {
		name    string
		msg     midi.Message
		handled bool
	}{
		{"control change", midi.ControlChange(0, 50, 127), true},
		{"other channel", midi.ControlChange(8, 29, 0), true},
		{"note on", midi.NoteOn(0, 60, 100), false},
		{"note off", midi.NoteOff(0, 60), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Handle(xlName, tt.msg); got != tt.handled {
				t.Errorf("Handle() = %v, want %v", got, tt.handled)
			}
		})
	}

	if store.Len() != 2 {
		t.Errorf("store has %d values, want 2", store.Len())
	}

	snap := store.Snapshot()
	if v, _ := surface.Lookup(xlName, "21", preset.Layout, snap, surface.DefaultValue); v != 1 {
		t.Errorf("Lookup(21) = %v, want 1", v)
	}
	if v, _ := surface.Lookup(xlName, "12", preset.Layout, snap, surface.DefaultValue); v != 0 {
		t.Errorf("Lookup(12) = %v, want 0", v)
	}
}

func TestHandleLogsPhysicalControls(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	preset := &surface.Preset{Layout: surface.NewLayout(xlName, 77, 49, 29, 13), Columns: 8}
	l := New(surface.NewStore(), WithLogger(logger), WithPreset(preset))

	l.Handle(xlName, midi.ControlChange(0, 50, 64))
	if !strings.Contains(buf.String(), "control=21") {
		t.Errorf("log does not name control 21: %s", buf.String())
	}

	// CC 57 would be a ninth column on the bottom row; the XL has eight
	buf.Reset()
	l.Handle(xlName, midi.ControlChange(0, 57, 64))
	if strings.Contains(buf.String(), "control=") {
		t.Errorf("log names a control the device does not have: %s", buf.String())
	}
}

func TestHandleKeepsDevicesApart(t *testing.T) {
	store := surface.NewStore()
	l := New(store, WithLogger(quietLogger()))

	l.Handle("A", midi.ControlChange(0, 21, 127))
	l.Handle("B", midi.ControlChange(0, 21, 0))

	if v, _ := store.Value("A", 21); v != 1 {
		t.Errorf("A/21 = %v, want 1", v)
	}
	if v, _ := store.Value("B", 21); v != 0 {
		t.Errorf("B/21 = %v, want 0", v)
	}
}

func TestCloseWithoutListeners(t *testing.T) {
	l := New(surface.NewStore(), WithLogger(quietLogger()))
	l.Close()
	if len(l.Devices()) != 0 {
		t.Errorf("Devices() = %v, want none", l.Devices())
	}
}

func buildSMF(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, track := range tracks {
		track.Close(0)
		if err := s.Add(track); err != nil {
			t.Fatalf("failed to add track: %v", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write MIDI: %v", err)
	}
	return buf.Bytes()
}

func TestReplay(t *testing.T) {
	var first smf.Track
	first.Add(0, midi.ControlChange(0, 50, 10))
	first.Add(0, midi.NoteOn(0, 60, 100))
	first.Add(480, midi.ControlChange(0, 50, 127))

	var second smf.Track
	second.Add(240, midi.ControlChange(0, 50, 0))
	second.Add(0, midi.ControlChange(0, 29, 0))

	data := buildSMF(t, first, second)

	store := surface.NewStore()
	n, err := Replay(bytes.NewReader(data), xlName, store)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if n != 4 {
		t.Errorf("Replay() applied %d control changes, want 4", n)
	}

	// tick 480 on the first track is the latest move of CC 50
	if v, _ := store.Value(xlName, 50); v != 1 {
		t.Errorf("CC 50 = %v, want 1", v)
	}
	if v, _ := store.Value(xlName, 29); v != 0 {
		t.Errorf("CC 29 = %v, want 0", v)
	}
}

func TestReplayInvalid(t *testing.T) {
	_, err := Replay(bytes.NewReader([]byte("not a midi file")), xlName, surface.NewStore())
	if err == nil {
		t.Error("Replay() expected error for invalid data")
	}

	if _, err := ReplayFile("does-not-exist.mid", xlName, surface.NewStore()); err == nil {
		t.Error("ReplayFile() expected error for missing file")
	}
}
