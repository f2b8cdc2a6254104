package main

import (
	"encoding/json"
	"fmt"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/spf13/cobra"
)

var idJSONFlag bool

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Get device identification information",
	Run: func(cmd *cobra.Command, args []string) {
		// Unlike the other commands this one's whole job is the identity
		// query, so connect bare and issue *IDN? exactly once.
		ctl, err := dp800.Connect(ipFlag, portFlag, dp800.DefaultTimeout)
		if err != nil {
			fatal(err)
		}
		defer ctl.Close()
		executeID(ctl, idJSONFlag)
	},
}

func init() {
	idCmd.Flags().BoolVarP(&idJSONFlag, "json", "j", false, "Output in JSON format")
	rootCmd.AddCommand(idCmd)
}

func executeID(ctl *dp800.Controller, jsonOutput bool) {
	deviceID, err := ctl.DeviceID()
	if err != nil {
		fatalClose(ctl, err)
	}
	if err := dp800.ValidateDeviceID(deviceID); err != nil {
		fatalClose(ctl, err)
	}

	if jsonOutput {
		ident, err := dp800.ParseIdentity(deviceID)
		if err != nil {
			fatalClose(ctl, err)
		}
		data, err := json.MarshalIndent(ident, "", "  ")
		if err != nil {
			fatalClose(ctl, err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("Device ID: %s\n", deviceID)
	}
}
