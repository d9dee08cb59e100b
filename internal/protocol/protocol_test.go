package protocol

import (
	"bytes"
	"testing"
)

func TestRequestRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff, '\n'}
	b, err := EncodeRequest(&Request{Op: OpCopy, Payload: payload, Source: SourceWayland})
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	got, err := DecodeRequest(b)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if got.Op != OpCopy || !bytes.Equal(got.Payload, payload) || got.Source != SourceWayland {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestPasteRequestHasNoPayload(t *testing.T) {
	b, err := EncodeRequest(&Request{Op: OpPaste})
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	got, err := DecodeRequest(b)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if got.Op != OpPaste || got.Payload != nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestDecodeRequestRejectsUnknownOp(t *testing.T) {
	for _, raw := range []string{
		`{"op":"DELETE"}`,
		`{}`,
		`{"op":"COPY","source":"mars"}`,
		`not json`,
	} {
		if _, err := DecodeRequest([]byte(raw)); err == nil {
			t.Errorf("DecodeRequest accepted %q", raw)
		}
	}
}

func TestDecodeResponseRejectsUnknownStatus(t *testing.T) {
	for _, raw := range []string{
		`{"status":"MAYBE"}`,
		`{}`,
		`[1,2]`,
	} {
		if _, err := DecodeResponse([]byte(raw)); err == nil {
			t.Errorf("DecodeResponse accepted %q", raw)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	b, err := EncodeResponse(&Response{Status: StatusPayload, Data: []byte("data")})
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}
	got, err := DecodeResponse(b)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if got.Status != StatusPayload || string(got.Data) != "data" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSourceDefaultsToUser(t *testing.T) {
	r := &Request{Op: OpCopy}
	if r.SourceOf() != SourceUser {
		t.Fatalf("SourceOf() = %q, want %q", r.SourceOf(), SourceUser)
	}
}
