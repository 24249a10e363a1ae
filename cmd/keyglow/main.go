// Package main is the entry point for the keyglow CLI.
//
// KeyGlow can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	keyglow run -c config.yaml      # Start the synchronization session
//	keyglow validate -c config.yaml # Validate configuration
//	keyglow ports                   # List available MIDI ports
//	keyglow version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "keyglow",
	Short: "Keyboard LEDs synchronized with mixer parameters",
	Long: `KeyGlow keeps a pad controller's per-key LED colors synchronized with
the live state of audio-mixer parameters, and turns key releases into
parameter toggles.

Quick start:
  1. Create a config file (keyglow.yaml)
  2. Run: keyglow run -c keyglow.yaml
  3. Press a bound pad to toggle its parameter

Example config:
  mixer:
    send: 127.0.0.1:10024
    listen: 0.0.0.0:9000
  device:
    port: Launchpad
  bindings:
    - name: Mic to B1
      trigger: 97
      strip: 0
      param: B1
      indicator: 116`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this keyglow binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keyglow %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
