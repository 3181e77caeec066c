package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// configureLogging sets the global log level from --log-level, falling back
// to --verbose. --log-level takes precedence.
func configureLogging(cmd *cobra.Command) error {
	level := logrus.InfoLevel

	levelStr, _ := cmd.Flags().GetString("log-level")
	if levelStr != "" {
		switch levelStr {
		case "debug":
			level = logrus.DebugLevel
		case "info":
			level = logrus.InfoLevel
		case "warn":
			level = logrus.WarnLevel
		case "error":
			level = logrus.ErrorLevel
		default:
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
		}
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = logrus.DebugLevel
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return nil
}
