package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/wire"
)

// ClientConfig configures outgoing connections.
type ClientConfig struct {
	// TLSConfig enables TLS when set.
	TLSConfig *tls.Config

	// MaxMessageSize is the frame size limit (default DefaultMaxMessageSize).
	MaxMessageSize uint32

	// ConnectTimeout bounds dialing and the TLS handshake (default 10s).
	ConnectTimeout time.Duration

	// Logger receives frame events (optional).
	Logger log.Logger
}

// Dial connects to address.
func Dial(ctx context.Context, address string, config ClientConfig) (*ClientConn, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	conn := raw
	if config.TLSConfig != nil {
		tlsConn := tls.Client(raw, config.TLSConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, fmt.Errorf("TLS handshake failed: %w", err)
		}
		if err := verifyConnection(tlsConn.ConnectionState()); err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("connection verification failed: %w", err)
		}
		conn = tlsConn
	}

	connID := uuid.New().String()
	framer := NewFramerWithMaxSize(conn, config.MaxMessageSize)
	if config.Logger != nil {
		framer.SetLogger(config.Logger, connID)
	}

	return &ClientConn{
		conn:    conn,
		framer:  framer,
		closeCh: make(chan struct{}),
		connID:  connID,
	}, nil
}

// ClientConn is a connection from a client to a Thing.
type ClientConn struct {
	conn    net.Conn
	framer  *Framer
	connID  string
	closeCh chan struct{}

	closeOnce sync.Once
	readMu    sync.Mutex
	callMu    sync.Mutex
	nextID    atomic.Uint32
}

// ConnID returns the local connection identifier used in log events.
func (c *ClientConn) ConnID() string {
	return c.connID
}

// RemoteAddr returns the peer address.
func (c *ClientConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send writes one frame.
func (c *ClientConn) Send(data []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	return c.framer.WriteFrame(data)
}

// Receive reads one frame, waiting at most timeout when it is positive.
func (c *ClientConn) Receive(timeout time.Duration) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}
	return c.framer.ReadFrame()
}

// Call sends req and waits for the response carrying the same message ID.
// A zero MessageID is replaced by the next connection-local ID. Responses to
// other IDs are discarded. Calls on one connection are serialized.
func (c *ClientConn) Call(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if req.MessageID == 0 {
		req.MessageID = c.allocID()
	}
	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	if err := c.Send(data); err != nil {
		return nil, err
	}

	for {
		var timeout time.Duration
		if dl, ok := ctx.Deadline(); ok {
			timeout = time.Until(dl)
			if timeout <= 0 {
				return nil, context.DeadlineExceeded
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := c.Receive(timeout)
		if err != nil {
			return nil, err
		}
		id, err := wire.PeekMessageID(frame)
		if err != nil || id != req.MessageID {
			continue
		}
		return wire.DecodeResponse(frame)
	}
}

func (c *ClientConn) allocID() uint32 {
	for {
		if id := c.nextID.Add(1); id != 0 {
			return id
		}
	}
}

// Close closes the connection. It is safe to call more than once.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}
