package dp800

import (
	"fmt"
	"strconv"
)

// tmcMarker starts every TMC definite-length binary block.
const tmcMarker = '#'

// parseTMCLength parses the ASCII decimal payload length of a TMC block.
// Only plain digits are accepted; Atoi alone would let a sign through and
// turn a corrupt frame into a negative slice length.
func parseTMCLength(field []byte) (int, error) {
	for _, b := range field {
		if b < '0' || b > '9' {
			return 0, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: bad length field %q", field)}
		}
	}
	payloadLen, err := strconv.Atoi(string(field))
	if err != nil {
		return 0, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: bad length field %q", field)}
	}
	return payloadLen, nil
}

// DecodeTMC strips the TMC block header from a binary reply and returns the
// payload. The frame is '#', one ASCII digit d, d ASCII decimal digits giving
// the payload length, then the payload itself. No trailing terminator is
// guaranteed, so any bytes past the declared length are dropped.
func DecodeTMC(raw []byte) ([]byte, error) {
	if len(raw) < 2 {
		return nil, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: frame too short (%d bytes)", len(raw))}
	}
	if raw[0] != tmcMarker {
		return nil, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: expected '#', got 0x%02x", raw[0])}
	}
	if raw[1] < '0' || raw[1] > '9' {
		return nil, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: length-of-length byte 0x%02x is not a digit", raw[1])}
	}

	lengthDigits := int(raw[1] - '0')
	headerSize := 2 + lengthDigits
	if len(raw) < headerSize {
		return nil, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: truncated length field (%d of %d bytes)", len(raw)-2, lengthDigits)}
	}

	payloadLen, err := parseTMCLength(raw[2:headerSize])
	if err != nil {
		return nil, err
	}
	if len(raw)-headerSize < payloadLen {
		return nil, &ProtocolError{Msg: fmt.Sprintf("truncated TMC payload: declared %d bytes, got %d", payloadLen, len(raw)-headerSize)}
	}

	return raw[headerSize : headerSize+payloadLen], nil
}
