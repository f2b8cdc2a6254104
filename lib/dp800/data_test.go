package dp800

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDeviceID(t *testing.T) {
	err := ValidateDeviceID("RIGOL TECHNOLOGIES,DP832A,DP8B264501878,00.01.19")
	assert.NoError(t, err)
}

func TestValidateDeviceID_TrimsFields(t *testing.T) {
	err := ValidateDeviceID(" RIGOL TECHNOLOGIES , DP832A ,SN123,1.0")
	assert.NoError(t, err)
}

func TestValidateDeviceID_WrongModel(t *testing.T) {
	err := ValidateDeviceID("RIGOL TECHNOLOGIES,DP832,SN123,1.0")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "DP832")
}

func TestValidateDeviceID_WrongManufacturer(t *testing.T) {
	err := ValidateDeviceID("KEYSIGHT,DP832A,SN123,1.0")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "KEYSIGHT")
}

func TestValidateDeviceID_Empty(t *testing.T) {
	err := ValidateDeviceID("")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "empty device identification")
}

func TestValidateDeviceID_SingleField(t *testing.T) {
	err := ValidateDeviceID("OnlyOneField")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "invalid device identification format")
}

func TestParseIdentity(t *testing.T) {
	ident, err := ParseIdentity("RIGOL TECHNOLOGIES,DP832A,DP8B264501878,00.01.19")
	require.NoError(t, err)
	assert.Equal(t, Identity{
		Manufacturer: "RIGOL TECHNOLOGIES",
		Model:        "DP832A",
		Serial:       "DP8B264501878",
		Firmware:     "00.01.19",
	}, ident)
}

func TestParseIdentity_TwoFields(t *testing.T) {
	ident, err := ParseIdentity("RIGOL TECHNOLOGIES,DP832A")
	require.NoError(t, err)
	assert.Equal(t, "DP832A", ident.Model)
	assert.Empty(t, ident.Serial)
	assert.Empty(t, ident.Firmware)
}

func TestSpecForChannel(t *testing.T) {
	tests := []struct {
		channel    int
		maxVoltage float64
	}{
		{1, 32},
		{2, 32},
		{3, 5.3},
	}

	for _, tt := range tests {
		spec, err := SpecForChannel(tt.channel)
		require.NoError(t, err)
		assert.Equal(t, tt.maxVoltage, spec.MaxVoltage, "channel %d", tt.channel)
		assert.Equal(t, 3.2, spec.MaxCurrent, "channel %d", tt.channel)
		assert.Equal(t, 0.0, spec.MinVoltage, "channel %d", tt.channel)
	}
}

func TestSpecForChannel_Invalid(t *testing.T) {
	for _, channel := range []int{0, 4, -1, 100} {
		_, err := SpecForChannel(channel)
		require.Error(t, err, "channel %d", channel)
		assert.True(t, IsValidationError(err))
	}
}

func TestChannelState_JSON(t *testing.T) {
	state := &ChannelState{
		Channel:       2,
		OutputEnabled: true,
		SetVoltage:    12.5,
		SetCurrent:    1.2,
		OVPValue:      13,
		OVPEnabled:    true,
		OCPValue:      1.5,
	}

	jsonStr, err := state.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &decoded))
	assert.Equal(t, float64(2), decoded["channel"])
	assert.Equal(t, true, decoded["output_enabled"])
	assert.Equal(t, 12.5, decoded["set_voltage"])
	assert.Equal(t, false, decoded["ocp_enabled"])
}

func TestChannelState_String(t *testing.T) {
	state := &ChannelState{Channel: 1, SetVoltage: 3.3, SetCurrent: 0.5}

	s := state.String()
	assert.Contains(t, s, "Channel 1:")
	assert.Contains(t, s, "3.300 V")
	assert.Contains(t, s, "0.500 A")

	short := state.ShortString()
	assert.Contains(t, short, "CH1")
	assert.Contains(t, short, "3.300V")
}
