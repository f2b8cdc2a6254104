package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/spf13/cobra"
)

var (
	watchIntervalFlag time.Duration
	watchJSONFlag     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously poll channel states",
	Run: func(cmd *cobra.Command, args []string) {
		ctl := connectDevice()
		defer ctl.Close()
		executeWatch(ctl, watchIntervalFlag, watchJSONFlag)
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&watchIntervalFlag, "interval", "i", 2*time.Second, "Polling interval")
	watchCmd.Flags().BoolVarP(&watchJSONFlag, "json", "j", false, "Output in JSON format")
	rootCmd.AddCommand(watchCmd)
}

func executeWatch(ctl *dp800.Controller, interval time.Duration, jsonOutput bool) {
	if !jsonOutput {
		fmt.Printf("Polling channel states every %v (press Ctrl+C to stop)...\n\n", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First snapshot immediately, then at the interval
	printStates(ctl, jsonOutput)

	for range ticker.C {
		printStates(ctl, jsonOutput)
	}
}

func printStates(ctl *dp800.Controller, jsonOutput bool) {
	states, err := ctl.AllChannelsState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error polling channel states: %v\n", err)
		return
	}

	if jsonOutput {
		data, err := json.Marshal(states)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	timestamp := time.Now().Format("15:04:05")
	for _, state := range states {
		fmt.Printf("[%s] ", timestamp)
		printChannelLine(state)
	}
	fmt.Println()
}
