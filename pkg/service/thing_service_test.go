package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/transport"
	"github.com/wot-td/wot-go/pkg/wire"
)

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(ev log.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureLogger) messages() []*log.MessageEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*log.MessageEvent
	for _, ev := range c.events {
		if ev.Message != nil {
			out = append(out, ev.Message)
		}
	}
	return out
}

func startService(t *testing.T, logger log.Logger) *ThingService {
	t.Helper()
	config := DefaultConfig()
	config.ListenAddress = "127.0.0.1:0"
	config.ProtocolLogger = logger

	svc := NewThingService(lampHost(t), config)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { svc.Stop() })
	return svc
}

func TestThingServiceBlockwiseFetch(t *testing.T) {
	logger := &captureLogger{}
	svc := startService(t, logger)

	conn, err := transport.Dial(context.Background(), svc.Addr().String(), transport.ClientConfig{})
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var doc bytes.Buffer
	var etag []byte
	for num := uint32(0); ; num++ {
		resp, err := conn.Call(ctx, &wire.Request{
			Operation: wire.OpGetDescription,
			Block:     &wire.Block{Num: num, SZX: 4},
			ETag:      etag,
		})
		require.NoError(t, err)
		require.Equal(t, wire.StatusSuccess, resp.Status, resp.ErrorMessage())
		data, err := resp.BlockData()
		require.NoError(t, err)
		doc.Write(data)
		etag = resp.ETag
		if !resp.Block.More {
			assert.Equal(t, uint64(doc.Len()), resp.Size)
			break
		}
	}
	assert.True(t, json.Valid(doc.Bytes()), doc.String())

	msgs := logger.messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, log.MessageTypeRequest, msgs[0].Type)
}

func TestThingServiceInteractions(t *testing.T) {
	svc := startService(t, nil)

	conn, err := transport.Dial(context.Background(), svc.Addr().String(), transport.ClientConfig{})
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := conn.Call(ctx, &wire.Request{Operation: wire.OpInvokeAction, Target: "toggle"})
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, resp.Status)

	resp, err = conn.Call(ctx, &wire.Request{Operation: wire.OpReadProperty, Target: "status"})
	require.NoError(t, err)
	assert.Equal(t, "on", resp.Payload)

	resp, err = conn.Call(ctx, &wire.Request{Operation: wire.OpWriteProperty, Target: "brightness", Payload: 101})
	require.NoError(t, err)
	assert.Equal(t, wire.StatusBadRequest, resp.Status)
}

func TestThingServiceLifecycle(t *testing.T) {
	config := DefaultConfig()
	config.ListenAddress = "127.0.0.1:0"
	svc := NewThingService(lampHost(t), config)

	assert.Equal(t, StateIdle, svc.State())
	assert.ErrorIs(t, svc.Stop(), ErrNotStarted)
	require.NoError(t, svc.Start(context.Background()))
	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyStarted)
	assert.Equal(t, StateRunning, svc.State())
	require.NoError(t, svc.Stop())
	assert.Equal(t, StateStopped, svc.State())
}
