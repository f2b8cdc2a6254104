package dp800

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_CloseIdempotent(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	sess := NewSession(client, "test:5555")
	assert.NoError(t, sess.Close())
	assert.NoError(t, sess.Close())
}

func TestSession_CloseNeverOpened(t *testing.T) {
	sess := &Session{}
	assert.NoError(t, sess.Close())
	assert.NoError(t, sess.Close())
}

func TestSession_QueryAfterClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	sess := NewSession(client, "test:5555")
	require.NoError(t, sess.Close())

	_, err := sess.Query("*IDN?")
	require.Error(t, err)
	assert.True(t, IsCommunicationError(err))
	assert.True(t, errors.Is(err, ErrNotConnected))

	err = sess.Write(":OUTP CH1,ON")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConnected))

	_, err = sess.ReadRaw()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConnected))
}

func TestSession_QueryStripsTerminator(t *testing.T) {
	f, _ := newFakeInstrument(t)
	f.raw["FOO?"] = []byte("BAR\r\n")

	sess := NewSession(f.client, "test:5555")
	reply, err := sess.Query("FOO?")
	require.NoError(t, err)
	assert.Equal(t, "BAR", reply)
}

func TestSession_ReadRawFraming(t *testing.T) {
	f, _ := newFakeInstrument(t)
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	frame := append([]byte("#40010"), payload...)
	f.raw["GRAB?"] = frame

	sess := NewSession(f.client, "test:5555")
	require.NoError(t, sess.Write("GRAB?"))

	raw, err := sess.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, frame, raw)

	decoded, err := DecodeTMC(raw)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestSession_ReadRawBadMarker(t *testing.T) {
	f, _ := newFakeInstrument(t)
	f.raw["GRAB?"] = []byte("!!")

	sess := NewSession(f.client, "test:5555")
	require.NoError(t, sess.Write("GRAB?"))

	_, err := sess.ReadRaw()
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
}

func TestSession_ReadRawSignedLength(t *testing.T) {
	f, _ := newFakeInstrument(t)
	f.raw["GRAB?"] = []byte("#2-1")

	sess := NewSession(f.client, "test:5555")
	require.NoError(t, sess.Write("GRAB?"))

	_, err := sess.ReadRaw()
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "bad length field")
}

func TestDial_Refused(t *testing.T) {
	// Grab a port that is guaranteed to have no listener.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	_, err = Dial("127.0.0.1", port, DefaultTimeout)
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.Contains(t, err.Error(), "127.0.0.1")
}
