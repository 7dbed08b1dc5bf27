package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/wot-td/wot-go/pkg/log"
)

const (
	// LengthPrefixSize is the size of the big-endian frame length prefix.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single frame. A 1024 byte description
	// block plus its CBOR envelope fits comfortably.
	DefaultMaxMessageSize = 16 * 1024

	// MaxLogFrameDataSize is the largest frame body copied into log events.
	MaxLogFrameDataSize = 2048
)

var (
	// ErrMessageTooLarge indicates a frame larger than the configured limit.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates a zero-length frame.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")
)

// Framer reads and writes length-prefixed frames on a byte stream.
// WriteFrame is safe for concurrent use; ReadFrame must be called from a
// single goroutine.
type Framer struct {
	rw      io.ReadWriter
	maxSize uint32

	writeMu sync.Mutex
	header  [LengthPrefixSize]byte

	logger log.Logger
	connID string
}

// NewFramer creates a framer with the default size limit.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxMessageSize)
}

// NewFramerWithMaxSize creates a framer with a custom size limit.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &Framer{rw: rw, maxSize: maxSize}
}

// SetLogger enables frame logging under the given connection ID.
// Pass nil to disable.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.logger = logger
	f.connID = connID
}

// MaxMessageSize returns the frame size limit.
func (f *Framer) MaxMessageSize() uint32 {
	return f.maxSize
}

// WriteFrame writes data as one frame.
func (f *Framer) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint64(len(data)) > uint64(f.maxSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), f.maxSize)
	}

	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)

	f.writeMu.Lock()
	_, err := f.rw.Write(buf)
	f.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	f.logFrame(data, log.DirectionOut)
	return nil
}

// ReadFrame reads the next frame and returns its body. A clean end of stream
// between frames is reported as io.EOF.
func (f *Framer) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(f.rw, f.header[:]); err != nil {
		switch {
		case err == io.EOF:
			return nil, err
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrFrameTruncated
		default:
			return nil, fmt.Errorf("failed to read length prefix: %w", err)
		}
	}

	n := binary.BigEndian.Uint32(f.header[:])
	if n == 0 {
		return nil, ErrMessageEmpty
	}
	if n > f.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, n, f.maxSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(f.rw, body); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	f.logFrame(body, log.DirectionIn)
	return body, nil
}

func (f *Framer) logFrame(data []byte, dir log.Direction) {
	if f.logger == nil {
		return
	}
	ev := &log.FrameEvent{Size: LengthPrefixSize + len(data), Data: data}
	if len(data) > MaxLogFrameDataSize {
		ev.Data = data[:MaxLogFrameDataSize]
		ev.Truncated = true
	}
	f.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: f.connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame:        ev,
	})
}
