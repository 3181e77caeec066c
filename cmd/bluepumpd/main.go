package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bluepumpd",
	Short: "Bluetooth audio bridging daemon",
	Long: `bluepumpd bridges negotiated Bluetooth audio streams (A2DP, HSP/HFP)
to local PCM endpoints, pacing each transport against its nominal sample
rate and publishing state changes over D-Bus.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(runCmd)
}
