// Command sysmoded configures the system for laptop or tablet mode. It is
// started by the laptop-mode and tablet-mode systemd units, grabs the input
// devices configured for the mode and keeps them grabbed until the unit is
// stopped.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablet-mode/tabletmode/internal/config"
	"github.com/tablet-mode/tabletmode/internal/grab"
	"github.com/tablet-mode/tabletmode/internal/logging"
	"github.com/tablet-mode/tabletmode/internal/modes"
	"github.com/tablet-mode/tabletmode/internal/run"
	"github.com/tablet-mode/tabletmode/internal/service"
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
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:     "sysmoded",
		Short:   "Setup system for laptop or tablet mode.",
		Version: version,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"turn on verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file")

	for _, mode := range []modes.Mode{modes.Laptop, modes.Tablet} {
		mode := mode
		root.AddCommand(&cobra.Command{
			Use:   mode.String(),
			Short: fmt.Sprintf("enable %s mode", mode),
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				runDaemon(mode, verbose, configPath)
			},
		})
	}

	return root
}

// runDaemon grabs the devices configured for the mode and blocks until
// every grab process has exited.
func runDaemon(mode modes.Mode, verbose bool, configPath string) {
	if configPath == "" {
		configPath = config.Locate()
	}
	cfg, err := config.Load(configPath)

	logger := logging.New(cfg.Logging, verbose)
	defer logger.Sync()

	if err != nil {
		logger.Warn("Using default configuration", zap.Error(err))
	}

	d := grab.New(cfg, run.Exec{}, logger)
	d.OnReady(func() {
		service.NotifyReady(logger, mode.String())
	})

	logger.Info("Entering mode", zap.String("mode", mode.String()))
	d.SetMode(mode)
}
