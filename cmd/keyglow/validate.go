package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/keyglow/config"
)

// validateCmd validates a config file without starting a session.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a KeyGlow configuration file without starting a session.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  keyglow validate -c config.yaml
  keyglow validate --config /etc/keyglow/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Count total bindings (direct + from banks)
	directBindings := len(cfg.Bindings)
	bankBindings := 0
	for _, b := range cfg.Banks {
		bankBindings += len(b.Strips)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Mixer:         %s (feedback on %s)\n", cfg.Mixer.Send, cfg.Mixer.Listen)
	fmt.Printf("  Device port:   %s\n", cfg.Device.Port)
	fmt.Printf("  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Bindings:      %d direct + %d from banks = %d total\n",
		directBindings, bankBindings, directBindings+bankBindings)

	return nil
}
