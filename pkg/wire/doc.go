// Package wire defines the CBOR wire format for retrieving a Thing
// Description and interacting with its affordances over a framed stream.
//
// All maps use integer keys for compactness. Messages are length-prefixed
// by package transport.
//
// # Block-wise Retrieval
//
// A GetDescription request names a block by number and size exponent
// (16 << SZX bytes). The response carries the block bytes, the more flag,
// the full document size and the document ETag. Clients echo the ETag in
// follow-up requests; a changed document answers PRECONDITION_FAILED so
// blocks from different model states are never stitched together.
//
// # Affordance Operations
//
// ReadProperty, WriteProperty and InvokeAction address an affordance by
// its key in Target. Payloads are plain CBOR values.
package wire
