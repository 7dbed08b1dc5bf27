package wire

import (
	"bytes"
	"testing"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "get description",
			req: Request{
				MessageID: 1,
				Operation: OpGetDescription,
				Block:     &Block{Num: 3, SZX: 6},
				ETag:      []byte{0xde, 0xad},
			},
		},
		{
			name: "read property",
			req: Request{
				MessageID: 2,
				Operation: OpReadProperty,
				Target:    "status",
			},
		},
		{
			name: "write property",
			req: Request{
				MessageID: 3,
				Operation: OpWriteProperty,
				Target:    "brightness",
				Payload:   uint64(80),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeRequest(&tt.req)
			if err != nil {
				t.Fatalf("EncodeRequest failed: %v", err)
			}
			got, err := DecodeRequest(data)
			if err != nil {
				t.Fatalf("DecodeRequest failed: %v", err)
			}
			if got.MessageID != tt.req.MessageID || got.Operation != tt.req.Operation || got.Target != tt.req.Target {
				t.Errorf("header mismatch: got %+v, want %+v", got, tt.req)
			}
			if (got.Block == nil) != (tt.req.Block == nil) {
				t.Fatalf("block presence mismatch")
			}
			if got.Block != nil && *got.Block != *tt.req.Block {
				t.Errorf("block: got %+v, want %+v", *got.Block, *tt.req.Block)
			}
			if !bytes.Equal(got.ETag, tt.req.ETag) {
				t.Errorf("etag: got %x, want %x", got.ETag, tt.req.ETag)
			}
			if tt.req.Payload != nil && got.Payload != tt.req.Payload {
				t.Errorf("payload: got %v (%T), want %v", got.Payload, got.Payload, tt.req.Payload)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"zero message id", Request{Operation: OpGetDescription}},
		{"unknown operation", Request{MessageID: 1, Operation: 9}},
		{"missing target", Request{MessageID: 1, Operation: OpInvokeAction}},
		{"bad szx", Request{MessageID: 1, Operation: OpGetDescription, Block: &Block{SZX: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeRequest(&tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{
		MessageID: 7,
		Status:    StatusSuccess,
		Block:     &Block{Num: 1, SZX: 2, More: true},
		ETag:      []byte{1, 2, 3, 4, 5, 6, 7, 8},
		Size:      1234,
		Payload:   []byte(`{"@context":`),
	}

	data, err := EncodeResponse(&resp)
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}
	got, err := DecodeResponse(data)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}

	if !got.IsSuccess() || got.Size != 1234 || !got.Block.More {
		t.Errorf("unexpected response: %+v", got)
	}
	block, err := got.BlockData()
	if err != nil {
		t.Fatalf("BlockData failed: %v", err)
	}
	if string(block) != `{"@context":` {
		t.Errorf("block: got %q", block)
	}

	id, err := PeekMessageID(data)
	if err != nil || id != 7 {
		t.Errorf("PeekMessageID: got %d, %v", id, err)
	}
}

func TestBlockMath(t *testing.T) {
	tests := []struct {
		block  Block
		size   int
		offset int64
	}{
		{Block{Num: 0, SZX: 0}, 16, 0},
		{Block{Num: 2, SZX: 0}, 16, 32},
		{Block{Num: 3, SZX: 6}, 1024, 3072},
	}
	for _, tt := range tests {
		if tt.block.Size() != tt.size || tt.block.Offset() != tt.offset {
			t.Errorf("%+v: size %d offset %d", tt.block, tt.block.Size(), tt.block.Offset())
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusPreconditionFailed.String() != "PRECONDITION_FAILED" {
		t.Errorf("unexpected %q", StatusPreconditionFailed.String())
	}
	if !StatusDocumentInvalid.IsServerError() || StatusBadRequest.IsServerError() {
		t.Error("IsServerError mismatch")
	}
	if Status(99).String() != "UNKNOWN" {
		t.Error("expected UNKNOWN")
	}
}

func TestResponseErrorMessage(t *testing.T) {
	r := &Response{Status: StatusNotFound, Payload: "no property foo"}
	if r.ErrorMessage() != "no property foo" {
		t.Errorf("unexpected %q", r.ErrorMessage())
	}
	r.Payload = nil
	if r.ErrorMessage() != "NOT_FOUND" {
		t.Errorf("unexpected %q", r.ErrorMessage())
	}
	r.Payload = 12
	if _, err := r.BlockData(); err == nil {
		t.Error("expected error for non-bytes payload")
	}
}
