package dp800

import (
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// settleDelay is how long the instrument firmware needs to apply a
	// voltage/current set-point before a read-back reflects it. Empirically
	// required; reading back sooner returns the previous value.
	settleDelay = 500 * time.Millisecond

	// presetSettleDelay is the pause between selecting a preset key and
	// applying it.
	presetSettleDelay = 100 * time.Millisecond

	// voltageTolerance and currentTolerance bound the accepted difference
	// between a requested set-point and the read-back value. The instrument
	// rounds to its own display precision, so exact equality is not expected.
	voltageTolerance = 1e-3
	currentTolerance = 1e-4
)

// presetNames maps a preset id to the key name the instrument expects.
var presetNames = map[int]string{
	0: "DEFAULT",
	1: "USER1",
	2: "USER2",
	3: "USER3",
	4: "USER4",
}

// Controller implements the DP832A SCPI command set on top of a Session.
type Controller struct {
	session *Session
}

// Connect opens a session to the instrument and returns a controller for it.
// The caller owns the controller and must Close it on every exit path.
func Connect(host string, port int, timeout time.Duration) (*Controller, error) {
	session, err := Dial(host, port, timeout)
	if err != nil {
		return nil, err
	}
	return &Controller{session: session}, nil
}

// NewController wraps an existing session. Used by tests.
func NewController(session *Session) *Controller {
	return &Controller{session: session}
}

// Close releases the underlying session. Safe to call more than once.
func (c *Controller) Close() error {
	return c.session.Close()
}

// Addr returns the endpoint the controller is connected to.
func (c *Controller) Addr() string {
	return c.session.Addr()
}

// DeviceID queries the instrument identification string (*IDN?).
func (c *Controller) DeviceID() (string, error) {
	return c.session.Query("*IDN?")
}

// Identify queries and validates the instrument identity in one step.
func (c *Controller) Identify() (Identity, error) {
	deviceID, err := c.DeviceID()
	if err != nil {
		return Identity{}, err
	}
	if err := ValidateDeviceID(deviceID); err != nil {
		return Identity{}, err
	}
	return ParseIdentity(deviceID)
}

// queryFloat issues a query and parses the reply as a float.
func (c *Controller) queryFloat(command string) (float64, error) {
	reply, err := c.session.Query(command)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		return 0, &CommunicationError{
			Op:  fmt.Sprintf("query %q", command),
			Err: fmt.Errorf("unparseable numeric reply %q", reply),
		}
	}
	return value, nil
}

// queryOnOff issues a query and parses the reply as an ON/OFF status.
func (c *Controller) queryOnOff(command string) (bool, error) {
	reply, err := c.session.Query(command)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(reply), "ON"), nil
}

// ChannelState queries the full state of one channel: set-points, protection
// thresholds and status, and output state, in a fixed order. Any single
// failure aborts the whole snapshot.
func (c *Controller) ChannelState(channel int) (*ChannelState, error) {
	if err := validateChannel(channel); err != nil {
		return nil, err
	}

	state := &ChannelState{Channel: channel}
	var err error

	if state.SetVoltage, err = c.queryFloat(fmt.Sprintf(":SOUR%d:VOLT?", channel)); err != nil {
		return nil, err
	}
	if state.SetCurrent, err = c.queryFloat(fmt.Sprintf(":SOUR%d:CURR?", channel)); err != nil {
		return nil, err
	}
	if state.OVPValue, err = c.queryFloat(fmt.Sprintf(":SOUR%d:VOLT:PROT?", channel)); err != nil {
		return nil, err
	}
	if state.OCPValue, err = c.queryFloat(fmt.Sprintf(":SOUR%d:CURR:PROT?", channel)); err != nil {
		return nil, err
	}
	if state.OVPEnabled, err = c.queryOnOff(fmt.Sprintf(":SOUR%d:VOLT:PROT:STAT?", channel)); err != nil {
		return nil, err
	}
	if state.OCPEnabled, err = c.queryOnOff(fmt.Sprintf(":SOUR%d:CURR:PROT:STAT?", channel)); err != nil {
		return nil, err
	}
	if state.OutputEnabled, err = c.OutputState(channel); err != nil {
		return nil, err
	}

	return state, nil
}

// AllChannelsState queries every channel in ascending order. The first
// failure aborts the sequence; no partial results are returned.
func (c *Controller) AllChannelsState() ([]*ChannelState, error) {
	states := make([]*ChannelState, 0, NumChannels)
	for channel := 1; channel <= NumChannels; channel++ {
		state, err := c.ChannelState(channel)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// OutputState queries whether a channel's output is enabled.
func (c *Controller) OutputState(channel int) (bool, error) {
	if err := validateChannel(channel); err != nil {
		return false, err
	}
	return c.queryOnOff(fmt.Sprintf(":OUTP? CH%d", channel))
}

// SetOutputState switches a channel's output on or off. Unlike parameter
// setting there is no read-back verification for output toggles.
func (c *Controller) SetOutputState(channel int, on bool) error {
	if err := validateChannel(channel); err != nil {
		return err
	}

	token := "OFF"
	if on {
		token = "ON"
	}
	return c.session.Write(fmt.Sprintf(":OUTP CH%d,%s", channel, token))
}

// SetAllOutputs switches every channel in ascending order. Best effort, stop
// on first failure: already-switched channels are not rolled back and
// remaining channels are left unattempted.
func (c *Controller) SetAllOutputs(on bool) error {
	for channel := 1; channel <= NumChannels; channel++ {
		if err := c.SetOutputState(channel, on); err != nil {
			return err
		}
	}
	return nil
}

// SetChannelParameters writes a voltage and/or current set-point, waits for
// the instrument to settle, then reads the value(s) back and verifies them
// against the request within tolerance. A nil voltage or current leaves that
// parameter untouched; at least one must be given. All validation happens
// before any device I/O.
func (c *Controller) SetChannelParameters(channel int, voltage, current *float64) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	if voltage == nil && current == nil {
		return validationErrorf("must specify at least one of voltage or current for channel %d", channel)
	}

	spec := channelSpecs[channel]
	if voltage != nil && (*voltage < spec.MinVoltage || *voltage > spec.MaxVoltage) {
		return validationErrorf("voltage %g V out of range for channel %d (valid: %g-%g V)",
			*voltage, channel, spec.MinVoltage, spec.MaxVoltage)
	}
	if current != nil && (*current < spec.MinCurrent || *current > spec.MaxCurrent) {
		return validationErrorf("current %g A out of range for channel %d (valid: %g-%g A)",
			*current, channel, spec.MinCurrent, spec.MaxCurrent)
	}

	if voltage != nil {
		if err := c.session.Write(fmt.Sprintf(":SOUR%d:VOLT %s", channel, formatFloat(*voltage))); err != nil {
			return err
		}
	}
	if current != nil {
		if err := c.session.Write(fmt.Sprintf(":SOUR%d:CURR %s", channel, formatFloat(*current))); err != nil {
			return err
		}
	}

	// The firmware needs time to apply the set-point before it shows up in a
	// read-back.
	time.Sleep(settleDelay)

	if voltage != nil {
		actual, err := c.queryFloat(fmt.Sprintf(":SOUR%d:VOLT?", channel))
		if err != nil {
			return err
		}
		if math.Abs(actual-*voltage) > voltageTolerance {
			return &VerificationError{Channel: channel, Parameter: "voltage", Requested: *voltage, Actual: actual}
		}
	}
	if current != nil {
		actual, err := c.queryFloat(fmt.Sprintf(":SOUR%d:CURR?", channel))
		if err != nil {
			return err
		}
		if math.Abs(actual-*current) > currentTolerance {
			return &VerificationError{Channel: channel, Parameter: "current", Requested: *current, Actual: actual}
		}
	}

	return nil
}

// ChannelParameters queries the instrument's applied-settings string for a
// channel (:APPL?). The reply is passed through unparsed.
func (c *Controller) ChannelParameters(channel int) (string, error) {
	if err := validateChannel(channel); err != nil {
		return "", err
	}
	return c.session.Query(fmt.Sprintf(":APPL? CH%d", channel))
}

// ApplyPreset selects a stored preset (0 = factory default, 1-4 = user
// presets) and applies it.
func (c *Controller) ApplyPreset(presetID int) error {
	name, ok := presetNames[presetID]
	if !ok {
		return validationErrorf("invalid preset %d, must be 0-4", presetID)
	}

	if err := c.session.Write(fmt.Sprintf(":PRES:KEY %s", name)); err != nil {
		return err
	}
	time.Sleep(presetSettleDelay)
	return c.session.Write(":PRES")
}

// TakeScreenshot captures the instrument display as a BMP file and returns
// the filename written. An empty filename generates one from the instrument
// address and the current time.
func (c *Controller) TakeScreenshot(filename string) (string, error) {
	if filename == "" {
		host := c.session.Addr()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		filename = fmt.Sprintf("screenshot_%s_%s.bmp", host, time.Now().Format("2006-01-02T15:04:05"))
	}

	if err := c.session.Write(":SYSTem:PRINT? BMP"); err != nil {
		return "", err
	}

	raw, err := c.session.ReadRaw()
	if err != nil {
		return "", err
	}

	bmp, err := DecodeTMC(raw)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filename, bmp, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot file %s: %w", filename, err)
	}
	return filename, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
