// Package grab implements the daemon side of tabletmode: exclusive capture
// of the input devices configured for a mode, plus the matching on-screen
// keyboard state. Every spawned command is tracked through the same handle
// and waited on before the daemon returns.
package grab

import (
	"io/fs"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/tablet-mode/tabletmode/internal/config"
	"github.com/tablet-mode/tabletmode/internal/modes"
	"github.com/tablet-mode/tabletmode/internal/run"
)

// Daemon grabs the devices configured for one mode and blocks until every
// spawned process has exited.
type Daemon struct {
	cfg     *config.Config
	starter run.Starter
	logger  *zap.Logger

	onReady func()
}

// New creates a Daemon using the given starter to spawn subprocesses.
func New(cfg *config.Config, starter run.Starter, logger *zap.Logger) *Daemon {
	return &Daemon{
		cfg:     cfg,
		starter: starter,
		logger:  logger,
	}
}

// OnReady sets a callback invoked once every subprocess has been spawned,
// before the daemon starts waiting on them. The sysmoded entry point uses
// it to signal readiness to the service manager.
func (d *Daemon) OnReady(fn func()) {
	d.onReady = fn
}

// SetMode spawns one grab process per configured device plus one process
// setting the on-screen keyboard state, then waits for all of them.
// Individual exit codes are logged, not propagated; the grab processes are
// expected to run until the mode unit is stopped.
func (d *Daemon) SetMode(mode modes.Mode) {
	devices := d.Devices(mode)

	handles := make([]run.Handle, 0, len(devices)+1)

	oskArgs := modes.OSKCommand(mode == modes.Tablet)
	if h, err := d.starter.Start(d.cfg.Tools.Gsettings, oskArgs...); err != nil {
		d.logger.Warn("Failed to set on-screen keyboard state", zap.Error(err))
	} else {
		handles = append(handles, h)
	}

	for _, device := range devices {
		d.checkDevice(device)
		h, err := d.starter.Start(d.cfg.Tools.Evtest, "--grab", device)
		if err != nil {
			d.logger.Warn("Failed to grab device",
				zap.String("device", device), zap.Error(err))
			continue
		}
		d.logger.Debug("Grabbing device", zap.String("device", device))
		handles = append(handles, h)
	}

	if d.onReady != nil {
		d.onReady()
	}

	for _, h := range handles {
		if err := h.Wait(); err != nil {
			d.logger.Warn("Subprocess exited with error", zap.Error(err))
		}
	}
}

// Devices returns the ordered device list configured for the mode. An
// empty result is not an error, the daemon then only adjusts the keyboard
// state.
func (d *Daemon) Devices(mode modes.Mode) []string {
	devices := d.cfg.Devices(mode.String())
	if len(devices) == 0 {
		d.logger.Info("No devices configured to disable.")
	}
	return devices
}

// checkDevice warns about device paths that are unlikely to be grabbable:
// missing nodes, non-device files and devices already held by another grab
// process. The grab is still attempted either way.
func (d *Daemon) checkDevice(device string) {
	info, err := os.Stat(device)
	switch {
	case err != nil:
		d.logger.Warn("Cannot stat device",
			zap.String("device", device), zap.Error(err))
	case info.Mode()&fs.ModeCharDevice == 0:
		d.logger.Warn("Not a character device", zap.String("device", device))
	}

	if d.alreadyGrabbed(device) {
		d.logger.Warn("Device appears to be grabbed already",
			zap.String("device", device))
	}
}

// alreadyGrabbed reports whether another grab process currently holds the
// device. The mode units are restarted by systemd, so a previous instance
// may still hold the grab. Process listing failures are ignored, the check
// is advisory only.
func (d *Daemon) alreadyGrabbed(device string) bool {
	procs, err := process.Processes()
	if err != nil {
		return false
	}

	self := os.Getpid()
	for _, p := range procs {
		if int(p.Pid) == self {
			continue
		}
		argv, err := p.CmdlineSlice()
		if err != nil || len(argv) < 3 {
			continue
		}
		if strings.HasSuffix(argv[0], "evtest") && argv[1] == "--grab" && argv[2] == device {
			return true
		}
	}
	return false
}
