package main

import (
	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/fatih/color"
)

// Per-channel palette, matching the channel colors on the instrument's own
// display.
var channelAttrs = map[int]color.Attribute{
	1: color.FgYellow,
	2: color.FgCyan,
	3: color.FgMagenta,
}

func setupColor(cfg toolConfig) {
	// fatih/color already disables itself on non-TTYs and NO_COLOR; the
	// config setting can only turn color off, never force it on.
	if !cfg.ColorEnabled() {
		color.NoColor = true
	}
}

func channelColor(channel int) *color.Color {
	attr, ok := channelAttrs[channel]
	if !ok {
		return color.New()
	}
	return color.New(attr)
}

// printChannelState renders one channel block in the channel's color, with
// the output-enabled line in bold.
func printChannelState(state *dp800.ChannelState) {
	c := channelColor(state.Channel)
	bold := channelColor(state.Channel).Add(color.Bold)

	c.Printf("Channel %d:\n", state.Channel)
	c.Printf("  Output Enabled:  ")
	bold.Printf("%t\n", state.OutputEnabled)
	c.Printf("  Set Voltage:     %8.3f V\n", state.SetVoltage)
	c.Printf("  Set Current:     %8.3f A\n", state.SetCurrent)
	c.Printf("  OVP Value:       %8.3f V\n", state.OVPValue)
	c.Printf("  OVP Enabled:     %t\n", state.OVPEnabled)
	c.Printf("  OCP Value:       %8.3f A\n", state.OCPValue)
	c.Printf("  OCP Enabled:     %t\n", state.OCPEnabled)
}

// printChannelLine renders the compact one-line form used by watch.
func printChannelLine(state *dp800.ChannelState) {
	channelColor(state.Channel).Println(state.ShortString())
}
