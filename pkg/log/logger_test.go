package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wot-td/wot-go/pkg/wire"
)

type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func TestMultiLogger(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, nil, b)
	assert.Len(t, m, 2)

	m.Log(Event{ConnectionID: "c1"})
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)

	NoopLogger{}.Log(Event{})
}

func sampleEvent() Event {
	op := wire.OpGetDescription
	status := wire.StatusSuccess
	pt := 3 * time.Millisecond
	return Event{
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC),
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		ThingID:      "urn:dev:lamp",
		Message: &MessageEvent{
			Type:           MessageTypeResponse,
			MessageID:      9,
			Operation:      &op,
			Block:          &wire.Block{Num: 2, SZX: 4, More: true},
			Status:         &status,
			DocumentSize:   1500,
			ProcessingTime: &pt,
		},
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.wlog")
	fl, err := NewFileLogger(path)
	require.NoError(t, err)

	ev := sampleEvent()
	fl.Log(ev)
	fl.Log(Event{
		ConnectionID: "conn-1",
		Category:     CategoryState,
		StateChange:  &StateChangeEvent{Entity: StateEntityTransfer, NewState: "COMPLETE"},
	})
	require.NoError(t, fl.Close())
	require.NoError(t, fl.Close())
	fl.Log(ev)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []Event
	require.NoError(t, ReadEvents(f, func(e Event) error {
		got = append(got, e)
		return nil
	}))
	require.Len(t, got, 2)

	assert.True(t, ev.Timestamp.Equal(got[0].Timestamp))
	assert.Equal(t, ev.Message.DocumentSize, got[0].Message.DocumentSize)
	assert.Equal(t, *ev.Message.Block, *got[0].Message.Block)
	assert.Equal(t, wire.OpGetDescription, *got[0].Message.Operation)
	assert.Equal(t, "COMPLETE", got[1].StateChange.NewState)
}

func TestEncodeDecodeEvent(t *testing.T) {
	ev := sampleEvent()
	data, err := EncodeEvent(ev)
	require.NoError(t, err)

	got, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev.ThingID, got.ThingID)
	assert.Equal(t, *ev.Message.ProcessingTime, *got.Message.ProcessingTime)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewSlogAdapter(logger).Log(sampleEvent())

	out := buf.String()
	for _, want := range []string{
		"msg=protocol",
		"conn_id=conn-1",
		"layer=WIRE",
		"operation=GetDescription",
		"block=2",
		"block_size=256",
		"more=true",
		"status=SUCCESS",
		"doc_size=1500",
		"thing_id=urn:dev:lamp",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "IN", DirectionIn.String())
	assert.Equal(t, "HTTP", LayerHTTP.String())
	assert.Equal(t, "ERROR", CategoryError.String())
	assert.Equal(t, "RESPONSE", MessageTypeResponse.String())
	assert.Equal(t, "TRANSFER", StateEntityTransfer.String())
	assert.Equal(t, "UNKNOWN", Layer(42).String())
}
