// Package protocol defines the clipd request/response types.
//
// Both are small tagged unions serialized as JSON inside a length-prefixed
// frame (see internal/wire). encoding/json base64-encodes []byte fields,
// so binary payloads are safe to carry. The encoding is shared verbatim
// between daemon and CLI builds; any schema change is a breaking protocol
// change.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Op identifies the kind of request.
type Op string

const (
	OpCopy  Op = "COPY"
	OpPaste Op = "PASTE"
)

// Source records where a Copy originated. A Copy tagged SourceWayland
// came from the compositor watcher and must not be pushed back to the
// compositor, or copy→push→watch→copy would loop forever.
type Source string

const (
	SourceUser    Source = "user"
	SourceWayland Source = "wayland"
)

// Status identifies the kind of response.
type Status string

const (
	StatusOK      Status = "OK"
	StatusPayload Status = "PAYLOAD"
	StatusError   Status = "ERROR"
)

// Request is one client request. Payload is set for COPY only.
type Request struct {
	Op      Op     `json:"op"`
	Payload []byte `json:"payload,omitempty"`
	Source  Source `json:"source,omitempty"`
}

// Response is the daemon's reply to one Request.
type Response struct {
	Status Status `json:"status"`
	Data   []byte `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SourceOf returns the effective copy source, defaulting to SourceUser.
func (r *Request) SourceOf() Source {
	if r.Source == "" {
		return SourceUser
	}
	return r.Source
}

// EncodeRequest serialises a request to JSON.
func EncodeRequest(r *Request) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest deserialises and validates a request.
func DecodeRequest(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("request decode: %w", err)
	}
	switch r.Op {
	case OpCopy, OpPaste:
	default:
		return nil, fmt.Errorf("request decode: unknown op %q", r.Op)
	}
	switch r.Source {
	case "", SourceUser, SourceWayland:
	default:
		return nil, fmt.Errorf("request decode: unknown source %q", r.Source)
	}
	return &r, nil
}

// EncodeResponse serialises a response to JSON.
func EncodeResponse(r *Response) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeResponse deserialises and validates a response.
func DecodeResponse(b []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("response decode: %w", err)
	}
	switch r.Status {
	case StatusOK, StatusPayload, StatusError:
	default:
		return nil, fmt.Errorf("response decode: unknown status %q", r.Status)
	}
	return &r, nil
}
