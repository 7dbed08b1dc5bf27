package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/wire"
)

// echoServer answers every request with a response carrying the same ID and
// the request target as payload.
func echoServer(t *testing.T, tlsConf *tls.Config, logger log.Logger) *Server {
	t.Helper()

	srv := NewServer(ServerConfig{
		Address:   "127.0.0.1:0",
		TLSConfig: tlsConf,
		Logger:    logger,
		OnMessage: func(conn *ServerConn, msg []byte) {
			req, err := wire.DecodeRequest(msg)
			if err != nil {
				return
			}
			data, _ := wire.EncodeResponse(&wire.Response{
				MessageID: req.MessageID,
				Status:    wire.StatusSuccess,
				Payload:   req.Target,
			})
			conn.Send(data)
		},
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func TestServerPlainCall(t *testing.T) {
	srv := echoServer(t, nil, nil)

	conn, err := Dial(context.Background(), srv.Addr().String(), ClientConfig{})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, target := range []string{"brightness", "on"} {
		resp, err := conn.Call(ctx, &wire.Request{Operation: wire.OpReadProperty, Target: target})
		if err != nil {
			t.Fatalf("Call failed: %v", err)
		}
		if !resp.IsSuccess() || resp.Payload != target {
			t.Errorf("response = %+v, want payload %q", resp, target)
		}
	}
}

func TestServerMessageIDsAreAssigned(t *testing.T) {
	srv := echoServer(t, nil, nil)

	conn, err := Dial(context.Background(), srv.Addr().String(), ClientConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a := &wire.Request{Operation: wire.OpGetDescription}
	b := &wire.Request{Operation: wire.OpGetDescription}
	if _, err := conn.Call(ctx, a); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Call(ctx, b); err != nil {
		t.Fatal(err)
	}
	if a.MessageID == 0 || b.MessageID == a.MessageID {
		t.Errorf("message IDs not unique: %d, %d", a.MessageID, b.MessageID)
	}
}

func TestServerTLS(t *testing.T) {
	cert, err := SelfSignedCertificate("localhost")
	if err != nil {
		t.Fatalf("SelfSignedCertificate failed: %v", err)
	}
	srv := echoServer(t, ServerTLSConfig(cert), nil)

	conn, err := Dial(context.Background(), srv.Addr().String(), ClientConfig{
		TLSConfig: ClientTLSConfig("localhost", true),
	})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := conn.Call(ctx, &wire.Request{Operation: wire.OpReadProperty, Target: "on"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if resp.Payload != "on" {
		t.Errorf("payload = %v", resp.Payload)
	}
}

func TestServerTLSRejectsWrongALPN(t *testing.T) {
	cert, err := SelfSignedCertificate("localhost")
	if err != nil {
		t.Fatal(err)
	}
	srv := echoServer(t, ServerTLSConfig(cert), nil)

	clientConf := ClientTLSConfig("localhost", true)
	clientConf.NextProtos = []string{"http/1.1"}
	_, err = Dial(context.Background(), srv.Addr().String(), ClientConfig{TLSConfig: clientConf})
	if err == nil {
		t.Fatal("expected dial to fail on ALPN mismatch")
	}
}

func TestServerConnectionLifecycle(t *testing.T) {
	logger := &captureLogger{}
	var connected, disconnected atomic.Int32

	srv := NewServer(ServerConfig{
		Address:      "127.0.0.1:0",
		Logger:       logger,
		OnConnect:    func(*ServerConn) { connected.Add(1) },
		OnDisconnect: func(*ServerConn) { disconnected.Add(1) },
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()

	conn, err := Dial(context.Background(), srv.Addr().String(), ClientConfig{})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return srv.ConnectionCount() == 1 })
	conn.Close()
	waitFor(t, func() bool { return disconnected.Load() == 1 })

	if connected.Load() != 1 {
		t.Errorf("OnConnect called %d times", connected.Load())
	}
	if srv.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d after close", srv.ConnectionCount())
	}

	var states []string
	for _, ev := range logger.snapshot() {
		if ev.StateChange != nil {
			states = append(states, ev.StateChange.NewState)
		}
	}
	if len(states) != 2 || states[0] != "CONNECTED" || states[1] != "DISCONNECTED" {
		t.Errorf("state events = %v", states)
	}
}

func TestClientClosedConn(t *testing.T) {
	srv := echoServer(t, nil, nil)

	conn, err := Dial(context.Background(), srv.Addr().String(), ClientConfig{})
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
	conn.Close()

	if err := conn.Send([]byte{1}); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("Send after close = %v, want ErrConnectionClosed", err)
	}
}

func TestServerStopIdempotent(t *testing.T) {
	srv := NewServer(ServerConfig{Address: "127.0.0.1:0"})
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop before Start = %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}
	srv.Stop()
	srv.Stop()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
