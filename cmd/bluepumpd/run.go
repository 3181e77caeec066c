package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurelab/bluepump"
	"github.com/aurelab/bluepump/config"
	"github.com/aurelab/bluepump/ipc"
	"github.com/aurelab/bluepump/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridging daemon",
	Long: `Run starts the daemon: it registers the configured adapters, claims
the D-Bus notifier when enabled, and serves transports until SIGINT or
SIGTERM triggers a clean shutdown.`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "path to YAML configuration file")
	runCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	runCmd.Flags().BoolP("verbose", "v", false, "debug logging shorthand")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := configureLogging(cmd); err != nil {
		return err
	}

	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmdLevel, _ := cmd.Flags().GetString("log-level"); cmdLevel == "" && cfg.LogLevel != "" {
		// The config file level applies when no flag overrides it.
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logrus.SetLevel(lvl)
		}
	}

	var notifier transport.Notifier
	if cfg.DBus {
		n, err := ipc.NewDBusNotifier(nil)
		if err != nil {
			return fmt.Errorf("dbus notifier: %w", err)
		}
		notifier = n
	}

	daemon, err := bluepump.New(cfg, notifier)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "runDaemon",
		"adapters": daemon.Adapters().Len(),
		"dbus":     cfg.DBus,
	}).Info("Daemon running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	logrus.WithFields(logrus.Fields{
		"function": "runDaemon",
		"signal":   sig.String(),
	}).Info("Shutdown signal received")

	daemon.Shutdown()
	return nil
}
