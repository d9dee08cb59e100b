// Package wire frames clipd protocol messages for transport over the
// Unix socket.
//
// Wire format:
//
//	[ uint32 little-endian length ][ body ]
//
// where body is one JSON-serialized Request or Response. One frame is one
// message; frames are never split or merged. Each frame is written with a
// single Write call so two goroutines sharing a connection can never
// interleave their frames' bytes.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.klb.dev/clipd/internal/protocol"
)

const (
	// MaxFrameSize is the largest frame body we will read (16 MiB).
	MaxFrameSize = 16 * 1024 * 1024

	writeDeadline = 5 * time.Second
)

// ErrMalformedFrame is returned when a frame cannot be read: the peer
// closed mid-frame, the declared length is absurd, or the body does not
// parse as the expected message. The connection is unusable afterwards.
var ErrMalformedFrame = errors.New("malformed frame")

// WriteFrame writes body as one length-prefixed frame in a single Write.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("frame too large (%d bytes)", len(body))
	}
	frame := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	_, err := w.Write(frame)
	return err
}

// ReadFrame reads one length-prefixed frame body. A connection closed
// mid-frame or an oversized length yields ErrMalformedFrame; a clean EOF
// before any length byte is reported as io.EOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading length: %v", ErrMalformedFrame, err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: declared length %d exceeds limit", ErrMalformedFrame, n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrMalformedFrame, err)
	}
	return body, nil
}

// Conn wraps a net.Conn with framing and typed message helpers. Used on
// both ends: the daemon reads requests and writes responses, the CLI the
// reverse.
type Conn struct {
	conn net.Conn
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// SetReadDeadline sets or clears the read deadline.
func (c *Conn) SetReadDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(d))
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// ReadRequest reads and decodes one Request frame.
func (c *Conn) ReadRequest() (*protocol.Request, error) {
	body, err := ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}
	req, err := protocol.DecodeRequest(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return req, nil
}

// WriteRequest encodes and writes one Request frame.
func (c *Conn) WriteRequest(req *protocol.Request) error {
	body, err := protocol.EncodeRequest(req)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return c.writeFrame(body)
}

// ReadResponse reads and decodes one Response frame.
func (c *Conn) ReadResponse() (*protocol.Response, error) {
	body, err := ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}
	resp, err := protocol.DecodeResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return resp, nil
}

// WriteResponse encodes and writes one Response frame.
func (c *Conn) WriteResponse(resp *protocol.Response) error {
	body, err := protocol.EncodeResponse(resp)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return c.writeFrame(body)
}

func (c *Conn) writeFrame(body []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	err := WriteFrame(c.conn, body)
	_ = c.conn.SetWriteDeadline(time.Time{})
	return err
}
