// Command sysmode sets or toggles the system mode. It controls the
// laptop-mode and tablet-mode systemd units, the GNOME on-screen keyboard
// and, optionally, desktop notifications.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablet-mode/tabletmode/internal/config"
	"github.com/tablet-mode/tabletmode/internal/logging"
	"github.com/tablet-mode/tabletmode/internal/modes"
	"github.com/tablet-mode/tabletmode/internal/run"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		notify     bool
		configPath string
	)

	root := &cobra.Command{
		Use:     "sysmode",
		Short:   "Sets or toggles the system mode.",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			// A missing mode is not an error, the exit code stays zero.
			fmt.Fprintln(os.Stderr, "Must specify a mode.")
		},
	}
	root.PersistentFlags().BoolVarP(&notify, "notify", "n", false,
		"display an on-screen notification")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file")

	for _, sub := range []struct {
		mode  modes.Mode
		short string
	}{
		{modes.Toggle, "toggles the system mode"},
		{modes.Laptop, "switch to laptop mode"},
		{modes.Tablet, "switch to tablet mode"},
		{modes.Default, "do not disable any input devices"},
	} {
		mode := sub.mode
		root.AddCommand(&cobra.Command{
			Use:   mode.String(),
			Short: sub.short,
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				setMode(mode, notify, configPath)
			},
		})
	}

	return root
}

// setMode loads the configuration and applies the requested mode. A broken
// configuration file degrades to defaults with a warning; mode transitions
// themselves never fail the process.
func setMode(mode modes.Mode, notifyFlag bool, configPath string) {
	if configPath == "" {
		configPath = config.Locate()
	}
	cfg, err := config.Load(configPath)

	logger := logging.New(cfg.Logging, false)
	defer logger.Sync()

	if err != nil {
		logger.Warn("Using default configuration", zap.Error(err))
	}

	sw := modes.NewSwitcher(cfg, run.Exec{}, logger, cfg.Notify || notifyFlag)
	sw.Apply(mode)
}
