package dp800

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultHost is the factory-default address of a DP832A on the bench LAN.
	DefaultHost = "192.168.0.55"
	// DefaultPort is the fixed port the instrument uses for SCPI over LAN.
	DefaultPort = 5555

	// DefaultTimeout bounds every single read or write on the socket. The
	// instrument answers simple queries in well under a second; screenshots
	// take a few seconds to transfer.
	DefaultTimeout = 5 * time.Second

	// terminator ends every command on write and every text reply on read.
	terminator = "\n"
)

// Session owns the TCP connection to the instrument. All exchanges are
// strictly synchronous request/response on the one socket; callers that need
// concurrent access must serialize it themselves.
type Session struct {
	addr    string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial opens a TCP connection to the instrument at host:port.
func Dial(host string, port int, timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, &ConnectionError{Endpoint: addr, Err: err}
	}

	logrus.WithField("addr", addr).Debug("session opened")

	return &Session{
		addr:    addr,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// NewSession wraps an already-established connection. Used by tests to drive
// the protocol over a pipe.
func NewSession(conn net.Conn, addr string) *Session {
	return &Session{
		addr:    addr,
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: DefaultTimeout,
	}
}

// Addr returns the endpoint the session was opened against.
func (s *Session) Addr() string { return s.addr }

// Close releases the socket. Safe to call on an already-closed or
// never-opened session; always returns nil so it can sit in a defer without
// masking the real error.
func (s *Session) Close() error {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		logrus.WithField("addr", s.addr).Debug("session closed")
	}
	return nil
}

// Write sends a command without reading a reply.
func (s *Session) Write(command string) error {
	if s.conn == nil {
		return &CommunicationError{Op: fmt.Sprintf("write %q", command), Err: ErrNotConnected}
	}

	logrus.WithField("cmd", command).Debug("scpi write")

	// A deadline error only happens on an already-closed conn; the Write
	// below then fails with the same condition and is the error reported.
	s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if _, err := s.conn.Write([]byte(command + terminator)); err != nil {
		return &CommunicationError{Op: fmt.Sprintf("write %q", command), Err: err}
	}
	return nil
}

// Query sends a command and reads back one terminator-delimited text reply,
// with the terminator stripped.
func (s *Session) Query(command string) (string, error) {
	if err := s.Write(command); err != nil {
		return "", err
	}

	s.conn.SetReadDeadline(time.Now().Add(s.timeout)) // deadline error dropped, see Write
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", &CommunicationError{Op: fmt.Sprintf("query %q", command), Err: err}
	}

	reply := strings.TrimRight(line, "\r\n")
	logrus.WithFields(logrus.Fields{"cmd": command, "reply": reply}).Debug("scpi query")
	return reply, nil
}

// ReadRaw reads one TMC-framed binary reply and returns the complete frame,
// header included. The header determines how many payload bytes to read, so
// a malformed header surfaces as a ProtocolError here already.
func (s *Session) ReadRaw() ([]byte, error) {
	if s.conn == nil {
		return nil, &CommunicationError{Op: "raw read", Err: ErrNotConnected}
	}

	s.conn.SetReadDeadline(time.Now().Add(s.timeout)) // deadline error dropped, see Write

	header := make([]byte, 2)
	if _, err := io.ReadFull(s.reader, header); err != nil {
		return nil, &CommunicationError{Op: "raw read header", Err: err}
	}
	if header[0] != tmcMarker {
		return nil, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: expected '#', got 0x%02x", header[0])}
	}
	if header[1] < '0' || header[1] > '9' {
		return nil, &ProtocolError{Msg: fmt.Sprintf("invalid TMC header: length-of-length byte 0x%02x is not a digit", header[1])}
	}

	lengthField := make([]byte, int(header[1]-'0'))
	if _, err := io.ReadFull(s.reader, lengthField); err != nil {
		return nil, &CommunicationError{Op: "raw read length", Err: err}
	}
	payloadLen, err := parseTMCLength(lengthField)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, &CommunicationError{Op: "raw read payload", Err: err}
	}

	frame := make([]byte, 0, 2+len(lengthField)+payloadLen)
	frame = append(frame, header...)
	frame = append(frame, lengthField...)
	frame = append(frame, payload...)

	logrus.WithField("bytes", len(frame)).Debug("scpi raw read")
	return frame, nil
}
