// Package server implements the clipd accept loop and per-connection
// request handling.
//
// The protocol is strictly one request, one response, then close. Every
// accepted connection gets its own goroutine; handlers share nothing but
// the secure buffer (and the bridge), so a slow or malicious client can
// only ever hurt its own connection.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"go.klb.dev/clipd/internal/bridge"
	"go.klb.dev/clipd/internal/buffer"
	"go.klb.dev/clipd/internal/keycell"
	"go.klb.dev/clipd/internal/protocol"
	"go.klb.dev/clipd/internal/wire"
)

// requestTimeout bounds how long a client may take to deliver its one
// request frame. Keeps abandoned connections from pinning goroutines.
const requestTimeout = 10 * time.Second

// Clipboard is the buffer surface the server dispatches against. Satisfied
// by *buffer.Buffer.
type Clipboard interface {
	Write(plaintext []byte) error
	Read() ([]byte, error)
}

// Server accepts connections and dispatches requests against the buffer.
type Server struct {
	ln  net.Listener
	buf Clipboard
	br  *bridge.Bridge // nil when no compositor session
}

// New returns a Server. br may be nil to disable compositor sync.
func New(ln net.Listener, buf Clipboard, br *bridge.Bridge) *Server {
	return &Server{ln: ln, buf: buf, br: br}
}

// Serve accepts connections until ctx is cancelled. Each connection is
// handled on its own goroutine; accept errors are logged and the loop
// continues.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("accept failed", "err", err)
			continue
		}
		go s.handle(conn)
	}
}

// handle serves exactly one request/response exchange, then closes.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	wc := wire.New(conn)
	wc.SetReadDeadline(requestTimeout)
	req, err := wc.ReadRequest()
	if err != nil {
		// Unparseable frame: drop the connection without a reply.
		if !errors.Is(err, io.EOF) {
			slog.Debug("dropping client", "err", err)
		}
		return
	}
	wc.SetReadDeadline(0)

	var resp *protocol.Response
	switch req.Op {
	case protocol.OpCopy:
		resp = s.handleCopy(req)
	case protocol.OpPaste:
		resp = s.handlePaste()
	}

	if err := wc.WriteResponse(resp); err != nil {
		slog.Debug("response write failed", "err", err)
	}

	// Compositor sync follows every accepted local write, even when the
	// client vanished before reading its reply — the buffer already
	// changed, so the compositor must follow. Push failures are equally
	// independent of the client and never reach it.
	if req.Op == protocol.OpCopy && resp.Status == protocol.StatusOK &&
		s.br != nil && req.SourceOf() == protocol.SourceUser {
		s.br.Push(req.Payload)
	}
}

func (s *Server) handleCopy(req *protocol.Request) *protocol.Response {
	if err := s.buf.Write(req.Payload); err != nil {
		slog.Error("copy failed", "err", err)
		return &protocol.Response{Status: protocol.StatusError, Error: err.Error()}
	}
	slog.Debug("copied", "size_bytes", len(req.Payload), "source", req.SourceOf())
	return &protocol.Response{Status: protocol.StatusOK}
}

func (s *Server) handlePaste() *protocol.Response {
	data, err := s.buf.Read()
	switch {
	case errors.Is(err, buffer.ErrEmpty):
		return &protocol.Response{Status: protocol.StatusError, Error: "no data"}
	case errors.Is(err, keycell.ErrAuthentication):
		// Should never happen in normal operation: the stored
		// ciphertext no longer verifies under the loaded key.
		slog.Warn("stored clipboard failed authentication")
		return &protocol.Response{Status: protocol.StatusError, Error: "decryption failed"}
	case err != nil:
		slog.Error("paste failed", "err", err)
		return &protocol.Response{Status: protocol.StatusError, Error: err.Error()}
	}
	slog.Debug("pasted", "size_bytes", len(data))
	return &protocol.Response{Status: protocol.StatusPayload, Data: data}
}
