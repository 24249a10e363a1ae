package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	// register the MIDI driver so ports can be enumerated
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// portsCmd lists the MIDI ports visible to the driver.
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI ports",
	Long: `List the MIDI input and output ports visible on this machine.

Use the output to pick the device.port value for your config file; any
substring of the port name works.

Example:
  keyglow ports`,
	Run: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) {
	defer midi.CloseDriver()

	fmt.Println("MIDI inputs:")
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		fmt.Println("  (none)")
	}
	for i, in := range ins {
		fmt.Printf("  [%d] %s\n", i, in.String())
	}

	fmt.Println("MIDI outputs:")
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		fmt.Println("  (none)")
	}
	for i, out := range outs {
		fmt.Printf("  [%d] %s\n", i, out.String())
	}
}
