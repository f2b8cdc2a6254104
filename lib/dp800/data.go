package dp800

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Accepted identity for this controller. Only manufacturer and model are
// validated; serial and firmware are informational.
const ValidManufacturer = "RIGOL TECHNOLOGIES"

// ValidModels holds the supported instrument models.
var ValidModels = map[string]bool{
	"DP832A": true,
}

// NumChannels is the number of output channels on the DP832A.
const NumChannels = 3

// Identity is the parsed reply to the *IDN? query.
type Identity struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	Firmware     string `json:"firmware"`
}

// ParseIdentity splits a raw *IDN? reply into its comma-separated fields.
// Serial and firmware may be absent; manufacturer and model are required.
func ParseIdentity(deviceID string) (Identity, error) {
	if deviceID == "" {
		return Identity{}, &ValidationError{Msg: "empty device identification string"}
	}

	parts := strings.Split(deviceID, ",")
	if len(parts) < 2 {
		return Identity{}, validationErrorf("invalid device identification format: %q", deviceID)
	}

	ident := Identity{
		Manufacturer: strings.TrimSpace(parts[0]),
		Model:        strings.TrimSpace(parts[1]),
	}
	if len(parts) > 2 {
		ident.Serial = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		ident.Firmware = strings.TrimSpace(parts[3])
	}
	return ident, nil
}

// ValidateDeviceID checks that a raw *IDN? reply identifies a supported
// instrument. Comparison is exact and case-sensitive after trimming.
func ValidateDeviceID(deviceID string) error {
	ident, err := ParseIdentity(deviceID)
	if err != nil {
		return err
	}

	if ident.Manufacturer != ValidManufacturer {
		return validationErrorf("unsupported manufacturer %q, expected %q (device ID: %s)",
			ident.Manufacturer, ValidManufacturer, deviceID)
	}
	if !ValidModels[ident.Model] {
		return validationErrorf("unsupported device model %q, expected one of %s (device ID: %s)",
			ident.Model, modelList(), deviceID)
	}
	return nil
}

func modelList() string {
	models := make([]string, 0, len(ValidModels))
	for m := range ValidModels {
		models = append(models, m)
	}
	return strings.Join(models, ", ")
}

// ChannelState is a read-only snapshot of one output channel. Produced fresh
// on every query, never cached.
type ChannelState struct {
	Channel       int     `json:"channel"`
	OutputEnabled bool    `json:"output_enabled"`
	SetVoltage    float64 `json:"set_voltage"`
	SetCurrent    float64 `json:"set_current"`
	OVPValue      float64 `json:"ovp_value"`
	OVPEnabled    bool    `json:"ovp_enabled"`
	OCPValue      float64 `json:"ocp_value"`
	OCPEnabled    bool    `json:"ocp_enabled"`
}

// String returns a multi-line representation of the channel state.
func (cs *ChannelState) String() string {
	return fmt.Sprintf(`Channel %d:
  Output Enabled:  %t
  Set Voltage:     %8.3f V
  Set Current:     %8.3f A
  OVP Value:       %8.3f V
  OVP Enabled:     %t
  OCP Value:       %8.3f A
  OCP Enabled:     %t`,
		cs.Channel, cs.OutputEnabled,
		cs.SetVoltage, cs.SetCurrent,
		cs.OVPValue, cs.OVPEnabled,
		cs.OCPValue, cs.OCPEnabled)
}

// ShortString returns a compact one-line representation for polling output.
func (cs *ChannelState) ShortString() string {
	output := "off"
	if cs.OutputEnabled {
		output = "ON"
	}
	return fmt.Sprintf("CH%d %-3s | V: %7.3fV | I: %6.3fA | OVP: %7.3fV (%t) | OCP: %6.3fA (%t)",
		cs.Channel, output,
		cs.SetVoltage, cs.SetCurrent,
		cs.OVPValue, cs.OVPEnabled,
		cs.OCPValue, cs.OCPEnabled)
}

// JSON returns the channel state as indented JSON.
func (cs *ChannelState) JSON() (string, error) {
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal channel state: %w", err)
	}
	return string(data), nil
}

// ChannelSpec holds the documented set-point bounds for one channel.
type ChannelSpec struct {
	MinVoltage float64
	MaxVoltage float64
	MinCurrent float64
	MaxCurrent float64
}

// channelSpecs is the compiled-in bounds table for the DP832A, indexed by
// channel number. Channels 1 and 2 are the 30 V rails, channel 3 the 5 V
// rail; set-point limits sit slightly above the rated output.
var channelSpecs = map[int]ChannelSpec{
	1: {MinVoltage: 0, MaxVoltage: 32, MinCurrent: 0, MaxCurrent: 3.2},
	2: {MinVoltage: 0, MaxVoltage: 32, MinCurrent: 0, MaxCurrent: 3.2},
	3: {MinVoltage: 0, MaxVoltage: 5.3, MinCurrent: 0, MaxCurrent: 3.2},
}

// SpecForChannel returns the set-point bounds for a channel.
func SpecForChannel(channel int) (ChannelSpec, error) {
	spec, ok := channelSpecs[channel]
	if !ok {
		return ChannelSpec{}, validationErrorf("invalid channel %d, must be 1-%d", channel, NumChannels)
	}
	return spec, nil
}

func validateChannel(channel int) error {
	if channel < 1 || channel > NumChannels {
		return validationErrorf("invalid channel %d, must be 1-%d", channel, NumChannels)
	}
	return nil
}
