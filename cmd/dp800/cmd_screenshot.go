package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/spf13/cobra"
)

var screenshotOutputFlag string

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Take a screenshot of the device display",
	Run: func(cmd *cobra.Command, args []string) {
		ctl := connectDevice()
		defer ctl.Close()
		executeScreenshot(ctl, screenshotOutputFlag)
	},
}

func init() {
	screenshotCmd.Flags().StringVarP(&screenshotOutputFlag, "output", "o", "", "Output filename (default: auto-generated with timestamp)")
	rootCmd.AddCommand(screenshotCmd)
}

func executeScreenshot(ctl *dp800.Controller, output string) {
	filename, err := ctl.TakeScreenshot(output)
	if err != nil {
		fatalClose(ctl, err)
	}
	fmt.Printf("Screenshot saved to: %s\n", filename)

	launchViewer(filename)
}

// launchViewer starts the configured screenshot viewer, if any, with
// {filename} replaced by the saved file. Viewer failures are a warning only;
// the screenshot is already on disk.
func launchViewer(filename string) {
	viewer := strings.TrimSpace(cfg.Tools.ScreenshotViewer)
	if viewer == "" {
		return
	}

	cmdline := strings.ReplaceAll(viewer, "{filename}", filename)
	if err := exec.Command("sh", "-c", cmdline).Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open screenshot viewer: %v\n", err)
		return
	}
	fmt.Printf("Opening screenshot with: %s\n", cmdline)
}
