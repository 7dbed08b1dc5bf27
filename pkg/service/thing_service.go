package service

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/wot-td/wot-go/pkg/blockwise"
	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/transport"
	"github.com/wot-td/wot-go/pkg/wire"
)

// ThingService serves a Host over the framed transport.
type ThingService struct {
	mu    sync.RWMutex
	state ServiceState

	config  Config
	host    *Host
	tracker *blockwise.Tracker
	handler *ProtocolHandler
	server  *transport.Server

	logger         *slog.Logger
	protocolLogger log.Logger
}

// NewThingService creates a service for host.
func NewThingService(host *Host, config Config) *ThingService {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := blockwise.NewTracker(config.Tracker)

	s := &ThingService{
		config:         config,
		host:           host,
		tracker:        tracker,
		handler:        NewProtocolHandler(host, tracker, config.Metrics),
		logger:         logger,
		protocolLogger: config.ProtocolLogger,
	}

	host.OnEvent(func(ev Event) {
		if ev.Type == EventThingUpdated {
			s.logState(log.StateEntityThing, "", "UPDATED", "")
		}
	})
	return s
}

// Host returns the served host.
func (s *ThingService) Host() *Host {
	return s.host
}

// State returns the service state.
func (s *ThingService) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start begins listening for framed connections.
func (s *ThingService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrAlreadyStarted
	}

	s.server = transport.NewServer(transport.ServerConfig{
		Address:        s.config.ListenAddress,
		TLSConfig:      s.config.TLSConfig,
		MaxMessageSize: s.config.MaxMessageSize,
		Logger:         s.protocolLogger,
		OnMessage:      s.handleMessage,
		OnDisconnect: func(conn *transport.ServerConn) {
			s.tracker.Forget(conn.ConnID())
			s.logger.Debug("connection closed", "conn", conn.ConnID())
		},
		OnConnect: func(conn *transport.ServerConn) {
			s.logger.Debug("connection accepted", "conn", conn.ConnID(), "remote", conn.RemoteAddr())
		},
		OnError: func(conn *transport.ServerConn, err error) {
			connID := ""
			if conn != nil {
				connID = conn.ConnID()
			}
			s.logger.Warn("transport error", "conn", connID, "error", err)
			s.logError(connID, log.LayerTransport, err, "read")
		},
	})
	if err := s.server.Start(ctx); err != nil {
		return err
	}

	s.state = StateRunning
	s.logger.Info("thing service started", "addr", s.server.Addr().String(), "tls", s.config.TLSConfig != nil)
	return nil
}

// Stop closes the listener and all connections.
func (s *ThingService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotStarted
	}
	err := s.server.Stop()
	s.state = StateStopped
	s.logger.Info("thing service stopped")
	return err
}

// Addr returns the listen address, or nil when not running.
func (s *ThingService) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return nil
	}
	return s.server.Addr()
}

// ConnectionCount returns the number of open connections.
func (s *ThingService) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return 0
	}
	return s.server.ConnectionCount()
}

func (s *ThingService) handleMessage(conn *transport.ServerConn, data []byte) {
	start := time.Now()

	req, err := wire.DecodeRequest(data)
	if err != nil {
		s.logger.Debug("bad request", "conn", conn.ConnID(), "error", err)
		s.logError(conn.ConnID(), log.LayerWire, err, "decode request")
		id, _ := wire.PeekMessageID(data)
		s.send(conn, &wire.Response{MessageID: id, Status: wire.StatusBadRequest, Payload: err.Error()}, nil, start)
		return
	}
	s.logMessage(conn.ConnID(), log.DirectionIn, &log.MessageEvent{
		Type:      log.MessageTypeRequest,
		MessageID: req.MessageID,
		Operation: &req.Operation,
		Target:    req.Target,
		Block:     req.Block,
	})

	resp := s.handler.HandleRequest(context.Background(), conn.ConnID(), req)
	s.send(conn, resp, req, start)
}

func (s *ThingService) send(conn *transport.ServerConn, resp *wire.Response, req *wire.Request, start time.Time) {
	data, err := wire.EncodeResponse(resp)
	if err != nil {
		s.logger.Error("encode response", "conn", conn.ConnID(), "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		s.logger.Debug("send response", "conn", conn.ConnID(), "error", err)
		return
	}

	took := time.Since(start)
	ev := &log.MessageEvent{
		Type:           log.MessageTypeResponse,
		MessageID:      resp.MessageID,
		Block:          resp.Block,
		Status:         &resp.Status,
		DocumentSize:   resp.Size,
		ProcessingTime: &took,
	}
	if req != nil {
		ev.Operation = &req.Operation
		ev.Target = req.Target
	}
	s.logMessage(conn.ConnID(), log.DirectionOut, ev)
}

// thingID returns the id of the served Thing for log events.
func (s *ThingService) thingID() string {
	var id string
	s.host.View(func(t *model.Thing) {
		if t.ID != nil {
			id = t.ID.String()
		}
	})
	return id
}

func (s *ThingService) logMessage(connID string, dir log.Direction, msg *log.MessageEvent) {
	if s.protocolLogger == nil {
		return
	}
	s.protocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		ThingID:      s.thingID(),
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message:      msg,
	})
}

func (s *ThingService) logState(entity log.StateEntity, oldState, newState, reason string) {
	if s.protocolLogger == nil {
		return
	}
	s.protocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		ThingID:   s.thingID(),
		Layer:     log.LayerService,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *ThingService) logError(connID string, layer log.Layer, err error, what string) {
	if s.protocolLogger == nil {
		return
	}
	s.protocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		ThingID:      s.thingID(),
		Layer:        layer,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: what,
		},
	})
}
