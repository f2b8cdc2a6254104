package dp800

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTMC(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	frame := append([]byte("#40010"), payload...)

	decoded, err := DecodeTMC(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeTMC_DropsTrailingBytes(t *testing.T) {
	frame := append([]byte("#15"), []byte("hello\n")...)

	decoded, err := DecodeTMC(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decoded)
}

func TestDecodeTMC_MissingMarker(t *testing.T) {
	_, err := DecodeTMC([]byte("BM1234567890"))
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "invalid TMC header")
}

func TestDecodeTMC_SignedLengthField(t *testing.T) {
	// Atoi would happily parse "-1" and "+1"; both must be rejected before
	// they can produce a negative slice length.
	for _, frame := range [][]byte{
		[]byte("#2-1"),
		[]byte("#2+1ab"),
		append([]byte("#3-10"), make([]byte, 16)...),
	} {
		decoded, err := DecodeTMC(frame)
		require.Error(t, err, "frame %q", frame)
		assert.True(t, IsProtocolError(err), "frame %q", frame)
		assert.Contains(t, err.Error(), "bad length field")
		assert.Nil(t, decoded)
	}
}

func TestDecodeTMC_BadLengthOfLength(t *testing.T) {
	_, err := DecodeTMC([]byte("#x1234"))
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
}

func TestDecodeTMC_TooShort(t *testing.T) {
	for _, frame := range [][]byte{nil, {}, {'#'}} {
		_, err := DecodeTMC(frame)
		require.Error(t, err)
		assert.True(t, IsProtocolError(err))
	}
}

func TestDecodeTMC_TruncatedPayload(t *testing.T) {
	_, err := DecodeTMC([]byte("#40010abc"))
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "truncated")
}
