package wire

import (
	"fmt"
)

// Block size exponent limits. A block holds 16 << SZX bytes.
const (
	MinSZX = 0 // 16 bytes
	MaxSZX = 6 // 1024 bytes
)

// Block identifies one fixed-size block of a document.
//
// CBOR encoding:
//
//	{
//	  1: num,   // uint32: block number
//	  2: szx,   // uint8: size exponent
//	  3: more   // bool: more blocks follow (responses only)
//	}
type Block struct {
	Num  uint32 `cbor:"1,keyasint"`
	SZX  uint8  `cbor:"2,keyasint"`
	More bool   `cbor:"3,keyasint,omitempty"`
}

// Size returns the block size in bytes.
func (b Block) Size() int {
	return 16 << b.SZX
}

// Offset returns the byte offset of the block.
func (b Block) Offset() int64 {
	return int64(b.Num) * int64(b.Size())
}

// Validate checks the size exponent.
func (b Block) Validate() error {
	if b.SZX > MaxSZX {
		return fmt.Errorf("invalid block size exponent: %d", b.SZX)
	}
	return nil
}

// Request represents a request from a client to a Thing.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32, non-zero
//	  2: operation,   // uint8
//	  3: target,      // string: affordance key
//	  4: block,       // Block (GetDescription)
//	  5: etag,        // bytes: expected document ETag
//	  6: payload      // operation-specific data
//	}
type Request struct {
	MessageID uint32    `cbor:"1,keyasint"`
	Operation Operation `cbor:"2,keyasint"`
	Target    string    `cbor:"3,keyasint,omitempty"`
	Block     *Block    `cbor:"4,keyasint,omitempty"`
	ETag      []byte    `cbor:"5,keyasint,omitempty"`
	Payload   any       `cbor:"6,keyasint,omitempty"`
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.MessageID == 0 {
		return fmt.Errorf("messageId 0 is reserved")
	}
	if !r.Operation.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Operation)
	}
	if r.Operation.NeedsTarget() && r.Target == "" {
		return fmt.Errorf("%s requires a target", r.Operation)
	}
	if r.Block != nil {
		if err := r.Block.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Response represents a response from a Thing.
//
// CBOR encoding:
//
//	{
//	  1: messageId,   // uint32: matches request
//	  2: status,      // uint8
//	  3: block,       // Block with more flag (GetDescription)
//	  4: etag,        // bytes: current document ETag
//	  5: size,        // uint64: full document size
//	  6: payload      // block bytes or operation result
//	}
type Response struct {
	MessageID uint32 `cbor:"1,keyasint"`
	Status    Status `cbor:"2,keyasint"`
	Block     *Block `cbor:"3,keyasint,omitempty"`
	ETag      []byte `cbor:"4,keyasint,omitempty"`
	Size      uint64 `cbor:"5,keyasint,omitempty"`
	Payload   any    `cbor:"6,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// ErrorMessage returns the error text carried in the payload of a failed
// response.
func (r *Response) ErrorMessage() string {
	if s, ok := r.Payload.(string); ok {
		return s
	}
	return r.Status.String()
}

// BlockData returns the block bytes of a GetDescription response.
func (r *Response) BlockData() ([]byte, error) {
	switch p := r.Payload.(type) {
	case []byte:
		return p, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected block payload type %T", r.Payload)
	}
}
