package listener

import (
	"testing"
	"time"

	"github.com/james-see/midisurface/pkg/surface"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/testdrv"
)

// testPorts returns the virtual in and out port of the test driver
func testPorts(t *testing.T) (drivers.In, drivers.Out) {
	t.Helper()
	ins := midi.GetInPorts()
	outs := midi.GetOutPorts()
	if len(ins) == 0 || len(outs) == 0 {
		t.Fatalf("test driver has no ports (in: %v, out: %v)", ins, outs)
	}
	return ins[0], outs[0]
}

// waitForValue polls the store until device/control holds want
func waitForValue(t *testing.T, store *surface.Store, device string, control int, want float64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := store.Value(device, control); ok && v == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	v, ok := store.Value(device, control)
	t.Fatalf("%s/%d = %v (set: %v), want %v", device, control, v, ok, want)
}

func TestPorts(t *testing.T) {
	in, _ := testPorts(t)
	ports := Ports()
	if len(ports) == 0 || ports[0] != in.String() {
		t.Errorf("Ports() = %v, want %q first", ports, in.String())
	}
}

func TestListenPort(t *testing.T) {
	in, out := testPorts(t)

	store := surface.NewStore()
	rec := NewRecorder()
	l := New(store, WithLogger(quietLogger()), WithRecorder(rec))
	defer l.Close()

	if err := l.ListenPort(xlName, in.String()); err != nil {
		t.Fatalf("ListenPort() error = %v", err)
	}
	if devices := l.Devices(); len(devices) != 1 || devices[0] != xlName {
		t.Fatalf("Devices() = %v, want [%s]", devices, xlName)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		t.Fatalf("SendTo() error = %v", err)
	}
	if err := send(midi.ControlChange(0, 50, 127)); err != nil {
		t.Fatalf("send error = %v", err)
	}
	waitForValue(t, store, xlName, 50, 1)
	if rec.Len() == 0 {
		t.Error("recorder did not receive the control change")
	}

	// listening again for the same device replaces the first listener
	if err := l.Listen(xlName, in); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if devices := l.Devices(); len(devices) != 1 {
		t.Errorf("Devices() = %v, want one entry", devices)
	}
	if err := send(midi.ControlChange(0, 50, 0)); err != nil {
		t.Fatalf("send error = %v", err)
	}
	waitForValue(t, store, xlName, 50, 0)

	l.Close()
	if devices := l.Devices(); len(devices) != 0 {
		t.Errorf("Devices() after Close = %v, want none", devices)
	}
}

func TestListenPortUnknown(t *testing.T) {
	l := New(surface.NewStore(), WithLogger(quietLogger()))
	if err := l.ListenPort(xlName, "no such port anywhere"); err == nil {
		t.Error("ListenPort() expected error for unknown port")
	}
	if len(l.Devices()) != 0 {
		t.Errorf("Devices() = %v, want none", l.Devices())
	}
}
