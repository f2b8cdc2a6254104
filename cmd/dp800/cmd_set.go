package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/spf13/cobra"
)

var (
	setVoltageFlag float64
	setCurrentFlag float64
)

var setCmd = &cobra.Command{
	Use:   "set <channel>",
	Short: "Set channel voltage and/or current",
	Long: `Set the voltage and/or current set-point of a channel. The value is written,
the instrument is given time to settle, and the set-point is read back and
verified. With no flags the channel's applied settings are printed instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		channel, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid channel %q\n", args[0])
			os.Exit(1)
		}

		var voltage, current *float64
		if cmd.Flags().Changed("voltage") {
			voltage = &setVoltageFlag
		}
		if cmd.Flags().Changed("current") {
			current = &setCurrentFlag
		}

		ctl := connectDevice()
		defer ctl.Close()
		executeSet(ctl, channel, voltage, current)
	},
}

func init() {
	setCmd.Flags().Float64VarP(&setVoltageFlag, "voltage", "v", 0, "Voltage to set in volts")
	setCmd.Flags().Float64VarP(&setCurrentFlag, "current", "c", 0, "Current to set in amps")
	rootCmd.AddCommand(setCmd)
}

func executeSet(ctl *dp800.Controller, channel int, voltage, current *float64) {
	// No set-point given: show what the channel is currently configured to.
	if voltage == nil && current == nil {
		params, err := ctl.ChannelParameters(channel)
		if err != nil {
			fatalClose(ctl, err)
		}
		fmt.Printf("Channel %d Parameters: %s\n", channel, params)
		return
	}

	if err := ctl.SetChannelParameters(channel, voltage, current); err != nil {
		fatalClose(ctl, err)
	}

	var set []string
	if voltage != nil {
		set = append(set, fmt.Sprintf("voltage to %g V", *voltage))
	}
	if current != nil {
		set = append(set, fmt.Sprintf("current to %g A", *current))
	}
	fmt.Printf("Channel %d: Set %s\n", channel, strings.Join(set, " and "))
}
