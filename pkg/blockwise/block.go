package blockwise

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/tdjson"
	"github.com/wot-td/wot-go/pkg/wire"
)

// ETagSize is the length of a document ETag in bytes.
const ETagSize = 8

// ErrOutOfRange indicates a block that starts past the end of the document.
var ErrOutOfRange = errors.New("block out of range")

// Window returns the slicer window covering block b.
func Window(b wire.Block) *tdjson.Slicer {
	return tdjson.NewWindow(b.Offset(), int64(b.Size()))
}

// SZXForSize returns the largest size exponent whose block fits in size
// bytes, clamped to [wire.MinSZX, wire.MaxSZX].
func SZXForSize(size int) uint8 {
	szx := uint8(wire.MinSZX)
	for szx < wire.MaxSZX && 16<<(szx+1) <= size {
		szx++
	}
	return szx
}

// Info renders thing once through an xxh3 hasher and returns the document
// size together with its ETag, the 64-bit digest in big-endian order. Two
// renderings share an ETag exactly when they produce the same bytes.
func Info(thing *model.Thing) (int64, []byte, error) {
	h := xxh3.New()
	s := tdjson.Full()
	if err := tdjson.Serialize(h, thing, s); err != nil {
		return 0, nil, err
	}
	return s.Cur, etagBytes(h.Sum64()), nil
}

func etagBytes(sum uint64) []byte {
	out := make([]byte, ETagSize)
	binary.BigEndian.PutUint64(out, sum)
	return out
}

// Result is one rendered block together with document metadata.
type Result struct {
	Block wire.Block
	Data  []byte
	Size  int64
	ETag  []byte
}

// Render serializes thing once, hashing the whole document and capturing the
// window of block b. The returned block has More set when bytes follow it.
// A block starting past the end of a non-empty document yields
// ErrOutOfRange.
func Render(thing *model.Thing, b wire.Block) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	s := Window(b)
	res, err := RenderWindow(thing, s)
	if err != nil {
		return nil, err
	}
	if res.Size > 0 && s.Start >= res.Size {
		return nil, fmt.Errorf("%w: offset %d, size %d", ErrOutOfRange, s.Start, res.Size)
	}

	b.More = s.More()
	res.Block = b
	return res, nil
}

// RenderWindow serializes thing once, returning the bytes inside s together
// with the size and ETag of the whole document. Result.Block is left zero.
func RenderWindow(thing *model.Thing, s *tdjson.Slicer) (*Result, error) {
	h := xxh3.New()
	var buf bytes.Buffer
	if size := s.Size(); size > 0 && size <= 1<<16 {
		buf.Grow(int(size))
	}

	s.Cur = 0
	if err := tdjson.Serialize(&teeWriter{window: s.Writer(&buf), hash: h}, thing, nil); err != nil {
		return nil, err
	}
	return &Result{
		Data: buf.Bytes(),
		Size: s.Cur,
		ETag: etagBytes(h.Sum64()),
	}, nil
}

// teeWriter feeds every byte to the hasher and the window writer.
type teeWriter struct {
	window *tdjson.WindowWriter
	hash   *xxh3.Hasher
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.hash.Write(p)
	t.window.Write(p)
	return len(p), t.window.Err()
}

func (t *teeWriter) WriteString(s string) (int, error) {
	t.hash.WriteString(s)
	t.window.WriteString(s)
	return len(s), t.window.Err()
}
