package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/wot-td/wot-go/pkg/log"
)

// bufRW adapts a bytes.Buffer to io.ReadWriter for the framer.
type bufRW struct{ *bytes.Buffer }

func newBuf() bufRW { return bufRW{new(bytes.Buffer)} }

func TestFramerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"single byte", []byte{0x42}},
		{"small message", []byte("hello")},
		{"binary data", []byte{0x00, 0xFF, 0x7F, 0x80}},
		{"max size message", bytes.Repeat([]byte("y"), DefaultMaxMessageSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newBuf()
			f := NewFramer(buf)

			if err := f.WriteFrame(tt.payload); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
			if want := LengthPrefixSize + len(tt.payload); buf.Len() != want {
				t.Errorf("frame size = %d, want %d", buf.Len(), want)
			}

			got, err := f.ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(tt.payload))
			}
		})
	}
}

func TestFramerWriteErrors(t *testing.T) {
	f := NewFramerWithMaxSize(newBuf(), 8)

	if err := f.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("expected ErrMessageEmpty, got %v", err)
	}
	if err := f.WriteFrame(make([]byte, 9)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
	if got := f.MaxMessageSize(); got != 8 {
		t.Errorf("MaxMessageSize() = %d, want 8", got)
	}
}

func TestFramerReadErrors(t *testing.T) {
	header := func(n uint32) []byte {
		b := make([]byte, LengthPrefixSize)
		binary.BigEndian.PutUint32(b, n)
		return b
	}

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"clean EOF", nil, io.EOF},
		{"short header", []byte{0, 0}, ErrFrameTruncated},
		{"zero length", header(0), ErrMessageEmpty},
		{"too large", header(DefaultMaxMessageSize + 1), ErrMessageTooLarge},
		{"short body", append(header(10), 1, 2, 3), ErrFrameTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newBuf()
			buf.Write(tt.input)
			_, err := NewFramer(buf).ReadFrame()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFramerSequence(t *testing.T) {
	buf := newBuf()
	f := NewFramer(buf)

	msgs := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for _, m := range msgs {
		if err := f.WriteFrame(m); err != nil {
			t.Fatal(err)
		}
	}
	for i, want := range msgs {
		got, err := f.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(ev log.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureLogger) snapshot() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]log.Event(nil), c.events...)
}

func TestFramerLogging(t *testing.T) {
	buf := newBuf()
	f := NewFramer(buf)
	logger := &captureLogger{}
	f.SetLogger(logger, "conn-1")

	big := bytes.Repeat([]byte("z"), MaxLogFrameDataSize+10)
	if err := f.WriteFrame(big); err != nil {
		t.Fatal(err)
	}
	if _, err := f.ReadFrame(); err != nil {
		t.Fatal(err)
	}

	events := logger.snapshot()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	out, in := events[0], events[1]
	if out.Direction != log.DirectionOut || in.Direction != log.DirectionIn {
		t.Errorf("directions = %v/%v", out.Direction, in.Direction)
	}
	if out.ConnectionID != "conn-1" || out.Layer != log.LayerTransport {
		t.Errorf("unexpected event header: %+v", out)
	}
	if out.Frame == nil || !out.Frame.Truncated || len(out.Frame.Data) != MaxLogFrameDataSize {
		t.Errorf("frame event not truncated: %+v", out.Frame)
	}
	if out.Frame.Size != LengthPrefixSize+len(big) {
		t.Errorf("frame size = %d", out.Frame.Size)
	}
}
