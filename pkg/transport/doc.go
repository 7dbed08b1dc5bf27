// Package transport carries CBOR wire messages over TCP, optionally wrapped
// in TLS 1.3.
//
// Every message travels in a frame with a 4-byte big-endian length prefix:
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│   TLS 1.3 (ALPN wot-td/1)      │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// The server delivers the frames of one connection in order, so a handler
// that answers synchronously keeps responses in request order.
package transport
