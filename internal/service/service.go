// Package service integrates sysmoded with the systemd service manager.
// The laptop-mode and tablet-mode units run sysmoded as Type=notify
// services; readiness is signalled once all grab processes are up.
package service

import (
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
)

// NotifyReady tells the service manager the daemon is ready and publishes
// the active mode as the unit status. Outside of a systemd unit this is a
// no-op.
func NotifyReady(logger *zap.Logger, mode string) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("Failed to notify service manager", zap.Error(err))
		return
	}
	if !sent {
		logger.Debug("Service manager notification not supported")
		return
	}

	_, _ = daemon.SdNotify(false, fmt.Sprintf("STATUS=%s mode active", mode))
}
