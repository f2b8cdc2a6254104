package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset <0-4>",
	Short: "Apply a stored preset (0 = factory default, 1-4 = user presets)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		presetID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid preset %q, must be 0-4\n", args[0])
			os.Exit(1)
		}

		ctl := connectDevice()
		defer ctl.Close()
		if err := ctl.ApplyPreset(presetID); err != nil {
			fatalClose(ctl, err)
		}
		fmt.Printf("Preset %d applied\n", presetID)
	},
}

func init() {
	rootCmd.AddCommand(presetCmd)
}
