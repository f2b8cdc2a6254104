package main

import (
	"encoding/json"
	"fmt"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/spf13/cobra"
)

var (
	stateChannelFlag int
	stateJSONFlag    bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Get channel state information",
	Long: `Get the full state of one channel (set-points, protection thresholds and
status, output state) or of all three channels when no channel is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctl := connectDevice()
		defer ctl.Close()
		executeState(ctl, stateChannelFlag, stateJSONFlag)
	},
}

func init() {
	stateCmd.Flags().IntVarP(&stateChannelFlag, "channel", "c", 0, "Channel number (1-3), all channels if omitted")
	stateCmd.Flags().BoolVarP(&stateJSONFlag, "json", "j", false, "Output in JSON format")
	rootCmd.AddCommand(stateCmd)
}

func executeState(ctl *dp800.Controller, channel int, jsonOutput bool) {
	var states []*dp800.ChannelState

	if channel != 0 {
		state, err := ctl.ChannelState(channel)
		if err != nil {
			fatalClose(ctl, err)
		}
		states = []*dp800.ChannelState{state}
	} else {
		var err error
		states, err = ctl.AllChannelsState()
		if err != nil {
			fatalClose(ctl, err)
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(states, "", "  ")
		if err != nil {
			fatalClose(ctl, err)
		}
		fmt.Println(string(data))
		return
	}

	for i, state := range states {
		if i > 0 {
			fmt.Println()
		}
		printChannelState(state)
	}
}
