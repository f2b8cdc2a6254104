package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/spf13/cobra"
)

var onCmd = &cobra.Command{
	Use:   "on <channel|all>",
	Short: "Turn channel output on",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeOutput(args[0], true)
	},
}

var offCmd = &cobra.Command{
	Use:   "off <channel|all>",
	Short: "Turn channel output off",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeOutput(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
}

func executeOutput(target string, on bool) {
	token := "OFF"
	if on {
		token = "ON"
	}

	if target == "all" {
		ctl := connectDevice()
		defer ctl.Close()
		if err := ctl.SetAllOutputs(on); err != nil {
			fatalClose(ctl, err)
		}
		fmt.Printf("All channels turned %s\n", token)
		return
	}

	channel, err := strconv.Atoi(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid channel %q, must be 1-%d or \"all\"\n", target, dp800.NumChannels)
		os.Exit(1)
	}

	ctl := connectDevice()
	defer ctl.Close()
	if err := ctl.SetOutputState(channel, on); err != nil {
		fatalClose(ctl, err)
	}
	fmt.Printf("Channel %d turned %s\n", channel, token)
}
