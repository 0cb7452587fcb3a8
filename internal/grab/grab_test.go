package grab

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/tablet-mode/tabletmode/internal/config"
	"github.com/tablet-mode/tabletmode/internal/modes"
	"github.com/tablet-mode/tabletmode/internal/run"
)

type fakeHandle struct {
	waited bool
	err    error
}

func (h *fakeHandle) Wait() error {
	h.waited = true
	return h.err
}

// fakeStarter records every spawn and hands out trackable handles.
type fakeStarter struct {
	spawned [][]string
	handles []*fakeHandle
	waitErr error
}

func (f *fakeStarter) Start(name string, args ...string) (run.Handle, error) {
	f.spawned = append(f.spawned, append([]string{name}, args...))
	h := &fakeHandle{err: f.waitErr}
	f.handles = append(f.handles, h)
	return h, nil
}

func testConfig(tablet ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tablet = tablet
	return cfg
}

func TestSetMode_FanOut(t *testing.T) {
	starter := &fakeStarter{}
	d := New(testConfig("/dev/input/event3"), starter, zap.NewNop())

	d.SetMode(modes.Tablet)

	// One keyboard-toggle process plus one grab per configured device.
	want := [][]string{
		{"/usr/bin/gsettings", "set", "org.gnome.desktop.a11y.applications", "screen-keyboard-enabled", "true"},
		{"/usr/bin/evtest", "--grab", "/dev/input/event3"},
	}
	if !reflect.DeepEqual(starter.spawned, want) {
		t.Errorf("spawned = %v, want %v", starter.spawned, want)
	}

	for i, h := range starter.handles {
		if !h.waited {
			t.Errorf("handle %d not waited on", i)
		}
	}
}

func TestSetMode_NoDevicesConfigured(t *testing.T) {
	starter := &fakeStarter{}
	d := New(testConfig(), starter, zap.NewNop())

	d.SetMode(modes.Laptop)

	if len(starter.spawned) != 1 {
		t.Fatalf("spawned %d processes, want only the keyboard toggle", len(starter.spawned))
	}
	if starter.spawned[0][0] != "/usr/bin/gsettings" {
		t.Errorf("spawned %v, want gsettings", starter.spawned[0])
	}
	if got := starter.spawned[0][len(starter.spawned[0])-1]; got != "false" {
		t.Errorf("keyboard state = %q, want \"false\" outside tablet mode", got)
	}
}

func TestSetMode_ReadyAfterFanOutBeforeFanIn(t *testing.T) {
	starter := &fakeStarter{}
	d := New(testConfig("/dev/input/event3", "/dev/input/event7"), starter, zap.NewNop())

	readyCalled := false
	d.OnReady(func() {
		readyCalled = true
		if len(starter.spawned) != 3 {
			t.Errorf("ready with %d spawns, want all 3", len(starter.spawned))
		}
		for i, h := range starter.handles {
			if h.waited {
				t.Errorf("handle %d already waited on at readiness", i)
			}
		}
	})

	d.SetMode(modes.Tablet)

	if !readyCalled {
		t.Error("ready callback never invoked")
	}
}

func TestSetMode_ExitErrorsNotPropagated(t *testing.T) {
	starter := &fakeStarter{waitErr: errors.New("exit status 1")}
	d := New(testConfig("/dev/input/event3"), starter, zap.NewNop())

	// Must return normally and still wait on every handle.
	d.SetMode(modes.Tablet)

	for i, h := range starter.handles {
		if !h.waited {
			t.Errorf("handle %d not waited on after error", i)
		}
	}
}

func TestDevices_OrderPreserved(t *testing.T) {
	devices := []string{"/dev/input/event9", "/dev/input/event2", "/dev/input/event5"}
	d := New(testConfig(devices...), &fakeStarter{}, zap.NewNop())

	if got := d.Devices(modes.Tablet); !reflect.DeepEqual(got, devices) {
		t.Errorf("Devices() = %v, want configured order %v", got, devices)
	}
	if got := d.Devices(modes.Laptop); len(got) != 0 {
		t.Errorf("Devices(laptop) = %v, want empty", got)
	}
}
