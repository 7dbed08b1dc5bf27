package service

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"

	"github.com/wot-td/wot-go/pkg/blockwise"
	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/metrics"
	"github.com/wot-td/wot-go/pkg/transport"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrNotFound       = errors.New("affordance not found")
	ErrNotAllowed     = errors.New("operation not allowed")
	ErrNoHandler      = errors.New("no handler registered")
	ErrInvalidInput   = errors.New("invalid input")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateRunning - service is accepting connections.
	StateRunning

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a ThingService.
type Config struct {
	// ListenAddress is the framed transport address (e.g. ":5683").
	ListenAddress string

	// TLSConfig enables TLS on the framed transport when set.
	TLSConfig *tls.Config

	// MaxMessageSize is the frame size limit.
	MaxMessageSize uint32

	// Tracker configures block-wise transfer tracking.
	Tracker blockwise.TrackerConfig

	// Logger is the operational logger. slog.Default() is used when nil.
	Logger *slog.Logger

	// ProtocolLogger receives structured protocol events (optional).
	ProtocolLogger log.Logger

	// Metrics receives retrieval and interaction metrics (optional).
	Metrics *metrics.Metrics
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddress:  ":5683",
		MaxMessageSize: transport.DefaultMaxMessageSize,
		Tracker:        blockwise.DefaultTrackerConfig(),
	}
}

// PropertyReader returns the current value of a property.
type PropertyReader func(ctx context.Context) (any, error)

// PropertyWriter applies a new property value.
type PropertyWriter func(ctx context.Context, value any) error

// ActionHandler runs an action and returns its output.
type ActionHandler func(ctx context.Context, input any) (any, error)

// EventType identifies a host event.
type EventType uint8

const (
	// EventThingUpdated fires after the Thing model was modified.
	EventThingUpdated EventType = iota

	// EventPropertyWritten fires after a property write succeeded.
	EventPropertyWritten

	// EventActionInvoked fires after an action completed.
	EventActionInvoked
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventThingUpdated:
		return "THING_UPDATED"
	case EventPropertyWritten:
		return "PROPERTY_WRITTEN"
	case EventActionInvoked:
		return "ACTION_INVOKED"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to handlers registered with Host.OnEvent.
type Event struct {
	Type  EventType
	Key   string
	Value any
}

// EventHandler receives host events. Handlers run synchronously and must
// not call back into the Host.
type EventHandler func(Event)
