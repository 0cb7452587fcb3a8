// Package modes implements the laptop, tablet and default mode transitions.
//
// Each transition is a fixed sequence of external commands: stop the
// opposing systemd unit, start the target unit, set the on-screen keyboard
// state and optionally send a desktop notification. Transitions are
// best-effort: a failed step is logged and the sequence continues, nothing
// is rolled back.
package modes

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tablet-mode/tabletmode/internal/config"
	"github.com/tablet-mode/tabletmode/internal/run"
)

// Mode is the target input and accessibility configuration.
type Mode string

const (
	// Default restores all input devices and hides the on-screen keyboard.
	Default Mode = "default"
	// Laptop enables the laptop-mode unit.
	Laptop Mode = "laptop"
	// Tablet enables the tablet-mode unit and the on-screen keyboard.
	Tablet Mode = "tablet"
	// Toggle switches between laptop and tablet depending on which is
	// currently active. It is resolved before any command runs.
	Toggle Mode = "toggle"
)

// Parse maps a CLI argument to a Mode.
func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case Default, Laptop, Tablet, Toggle:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string { return string(m) }

const (
	oskSchema = "org.gnome.desktop.a11y.applications"
	oskKey    = "screen-keyboard-enabled"
)

// OSKCommand returns the gsettings argument vector that sets the GNOME
// on-screen keyboard state. The value is serialized as the literal
// lowercase "true" or "false".
func OSKCommand(enabled bool) []string {
	return []string{"set", oskSchema, oskKey, strconv.FormatBool(enabled)}
}

// Switcher drives mode transitions through external commands.
type Switcher struct {
	cfg    *config.Config
	runner run.Runner
	logger *zap.Logger
	notify bool
}

// NewSwitcher creates a Switcher. When notify is set, each transition ends
// with a desktop notification.
func NewSwitcher(cfg *config.Config, runner run.Runner, logger *zap.Logger, notify bool) *Switcher {
	return &Switcher{
		cfg:    cfg,
		runner: runner,
		logger: logger,
		notify: notify,
	}
}

// Apply dispatches to the transition for the given mode.
func (s *Switcher) Apply(mode Mode) {
	switch mode {
	case Laptop:
		s.LaptopMode()
	case Tablet:
		s.TabletMode()
	case Toggle:
		s.ToggleMode()
	default:
		s.DefaultMode()
	}
}

// DefaultMode stops both mode units and hides the on-screen keyboard.
func (s *Switcher) DefaultMode() {
	s.stopUnit(s.cfg.Units.Laptop)
	s.stopUnit(s.cfg.Units.Tablet)
	s.setOSK(false)

	if s.notify {
		s.notifySend("Default mode.", "The system is now in default mode.")
	}
}

// LaptopMode stops the tablet unit, starts the laptop unit and hides the
// on-screen keyboard.
func (s *Switcher) LaptopMode() {
	s.stopUnit(s.cfg.Units.Tablet)
	s.startUnit(s.cfg.Units.Laptop)
	s.setOSK(false)

	if s.notify {
		s.notifyLaptopMode()
	}
}

// TabletMode stops the laptop unit, starts the tablet unit and shows the
// on-screen keyboard.
func (s *Switcher) TabletMode() {
	s.stopUnit(s.cfg.Units.Laptop)
	s.startUnit(s.cfg.Units.Tablet)
	s.setOSK(true)

	if s.notify {
		s.notifyTabletMode()
	}
}

// ToggleMode switches to laptop mode when the tablet unit is active and to
// tablet mode otherwise. Only the tablet unit's status is sampled; the
// laptop unit does not influence the decision.
func (s *Switcher) ToggleMode() {
	if s.systemctl("status", s.cfg.Units.Tablet, false) {
		s.LaptopMode()
	} else {
		s.TabletMode()
	}
}

// systemctl invokes the service manager with the given action on the given
// unit, via the configured sudo binary when root is set. It reports exit
// status 0 as true and anything else as false; a non-zero exit is a signal
// here, not an error.
func (s *Switcher) systemctl(action, unit string, root bool) bool {
	name := s.cfg.Tools.Systemctl
	args := []string{action, unit}
	if root {
		name = s.cfg.Sudo
		args = append([]string{s.cfg.Tools.Systemctl}, args...)
	}
	return s.runner.Run(name, args...) == nil
}

func (s *Switcher) stopUnit(unit string) {
	if !s.systemctl("stop", unit, true) {
		s.logger.Warn("Failed to stop unit", zap.String("unit", unit))
	}
}

func (s *Switcher) startUnit(unit string) {
	if !s.systemctl("start", unit, true) {
		s.logger.Warn("Failed to start unit", zap.String("unit", unit))
	}
}

// setOSKState sets the GNOME screen keyboard key and reports whether the
// settings tool succeeded.
func (s *Switcher) setOSKState(enabled bool) bool {
	return s.runner.Run(s.cfg.Tools.Gsettings, OSKCommand(enabled)...) == nil
}

func (s *Switcher) setOSK(enabled bool) {
	if !s.setOSKState(enabled) {
		s.logger.Warn("Failed to set on-screen keyboard state",
			zap.Bool("enabled", enabled))
	}
}

// notifySend sends a desktop notification. The exit status is deliberately
// ignored, notifications are fire and forget.
func (s *Switcher) notifySend(summary string, body ...string) {
	args := append([]string{summary}, body...)
	_ = s.runner.Run(s.cfg.Tools.NotifySend, args...)
}

func (s *Switcher) notifyLaptopMode() {
	s.notifySend("Laptop mode.", "The system is now in laptop mode.")
}

func (s *Switcher) notifyTabletMode() {
	s.notifySend("Tablet mode.", "The system is now in tablet mode.")
}
