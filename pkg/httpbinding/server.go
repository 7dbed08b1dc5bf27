package httpbinding

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/metrics"
	"github.com/wot-td/wot-go/pkg/service"
	"github.com/wot-td/wot-go/pkg/tdjson"
	"github.com/wot-td/wot-go/pkg/wire"
)

// Paths served by the binding.
const (
	WellKnownPath = "/.well-known/wot"
	PropertyPath  = "/properties/:key"
	ActionPath    = "/actions/:key"
	MetricsPath   = "/metrics"
)

// MediaTypeTD is the media type of a Thing Description.
const MediaTypeTD = "application/td+json"

// Config configures the HTTP binding.
type Config struct {
	// Address to listen on (e.g. ":8080").
	Address string

	// Logger is the operational logger. slog.Default() is used when nil.
	Logger *slog.Logger

	// ProtocolLogger receives error events (optional).
	ProtocolLogger log.Logger

	// Metrics enables collection and the /metrics endpoint (optional).
	Metrics *metrics.Metrics

	// TLSConfig serves HTTPS with a fixed certificate (optional).
	TLSConfig *tls.Config

	// ACMEHosts serves HTTPS with certificates obtained via ACME for these
	// host names. Ignored when TLSConfig is set.
	ACMEHosts []string

	// ACMECacheDir stores ACME certificates (default DefaultACMECacheDir).
	ACMECacheDir string
}

// DefaultACMECacheDir is where ACME certificates are cached.
const DefaultACMECacheDir = ".autocert"

// DefaultConfig returns the default HTTP binding configuration.
func DefaultConfig() Config {
	return Config{Address: ":8080"}
}

// Server exposes a Host over HTTP.
type Server struct {
	config Config
	host   *service.Host
	echo   *echo.Echo
	logger *slog.Logger
}

// NewServer creates the binding and registers its routes.
func NewServer(host *service.Host, config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("http request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s := &Server{config: config, host: host, echo: e, logger: logger}
	s.RegisterRoutes(e)
	return s
}

// RegisterRoutes installs the binding routes on e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET(WellKnownPath, s.handleDescription)
	e.HEAD(WellKnownPath, s.handleDescription)
	e.GET(PropertyPath, s.handleReadProperty)
	e.PUT(PropertyPath, s.handleWriteProperty)
	e.POST(ActionPath, s.handleInvokeAction)
	if s.config.Metrics != nil {
		e.GET(MetricsPath, echo.WrapHandler(s.config.Metrics.Handler()))
	}
}

// Handler returns the binding as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if tc := s.tlsConfig(); tc != nil {
		ln = tls.NewListener(ln, tc)
	}
	s.echo.Listener = ln
	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()
	s.logger.Info("http binding started", "addr", ln.Addr().String())
	return nil
}

// tlsConfig returns the HTTPS configuration, or nil for plain HTTP.
func (s *Server) tlsConfig() *tls.Config {
	if s.config.TLSConfig != nil {
		return s.config.TLSConfig
	}
	if len(s.config.ACMEHosts) == 0 {
		return nil
	}
	dir := s.config.ACMECacheDir
	if dir == "" {
		dir = DefaultACMECacheDir
	}
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(s.config.ACMEHosts...),
		Cache:      autocert.DirCache(dir),
	}
	return m.TLSConfig()
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.echo.Listener == nil {
		return nil
	}
	return s.echo.Listener.Addr()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ETagHeader formats a document ETag as a quoted HTTP entity tag.
func ETagHeader(etag []byte) string {
	return `"` + hex.EncodeToString(etag) + `"`
}

// handleDescription streams the Thing Description, or the single byte range
// asked for, straight into the response. A first pass under the same read
// lock fixes the size and ETag so the headers go out before the body.
func (s *Server) handleDescription(c echo.Context) error {
	start := time.Now()
	req := c.Request()
	resp := c.Response()

	spec, ranged := parseRange(req.Header.Get("Range"))
	var body, total int64
	err := s.host.StreamDescription(func(size int64, tag []byte) (io.Writer, *tdjson.Slicer) {
		total = size
		etag := ETagHeader(tag)
		if ir := req.Header.Get("If-Range"); ranged && ir != "" && ir != etag {
			ranged = false
		}

		h := resp.Header()
		h.Set("ETag", etag)
		h.Set("Accept-Ranges", "bytes")

		if req.Header.Get("If-None-Match") == etag {
			resp.WriteHeader(http.StatusNotModified)
			return nil, nil
		}
		if im := req.Header.Get("If-Match"); im != "" && im != "*" && im != etag {
			s.config.Metrics.ObserveFailure(metrics.BindingHTTP, wire.StatusPreconditionFailed.String())
			resp.WriteHeader(http.StatusPreconditionFailed)
			return nil, nil
		}

		status, window := http.StatusOK, tdjson.Full()
		body = size
		if ranged {
			first, last, ok := spec.resolve(size)
			if !ok {
				s.config.Metrics.ObserveFailure(metrics.BindingHTTP, wire.StatusOutOfRange.String())
				h.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
				resp.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
				return nil, nil
			}
			body = last - first + 1
			status, window = http.StatusPartialContent, tdjson.NewWindow(first, body)
			h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", first, last, size))
		}

		h.Set(echo.HeaderContentType, MediaTypeTD)
		h.Set(echo.HeaderContentLength, strconv.FormatInt(body, 10))
		resp.WriteHeader(status)
		if req.Method == http.MethodHead {
			body = 0
			return nil, nil
		}
		return resp, window
	})
	if err != nil {
		if !resp.Committed {
			return s.describeError(c, err)
		}
		// Headers are out; the short body tells the client the transfer broke.
		s.reportDescribeError(c, err)
		return nil
	}
	if body > 0 {
		s.config.Metrics.ObserveBlock(metrics.BindingHTTP, int(body), total, time.Since(start))
	}
	return nil
}

func (s *Server) describeError(c echo.Context, err error) error {
	status := s.reportDescribeError(c, err)
	return c.JSON(httpStatus(status), echo.Map{"error": err.Error()})
}

func (s *Server) reportDescribeError(c echo.Context, err error) wire.Status {
	status := service.StatusForError(err)
	s.config.Metrics.ObserveFailure(metrics.BindingHTTP, status.String())
	s.logger.Error("thing description unavailable", "error", err)
	if s.config.ProtocolLogger != nil {
		s.config.ProtocolLogger.Log(log.Event{
			Timestamp:  time.Now(),
			Direction:  log.DirectionOut,
			Layer:      log.LayerHTTP,
			Category:   log.CategoryError,
			RemoteAddr: c.RealIP(),
			Error: &log.ErrorEventData{
				Layer:   log.LayerHTTP,
				Message: err.Error(),
				Context: WellKnownPath,
			},
		})
	}
	return status
}

func (s *Server) handleReadProperty(c echo.Context) error {
	v, err := s.host.ReadProperty(c.Request().Context(), c.Param("key"))
	if err != nil {
		return s.interactionError(c, wire.OpReadProperty, err)
	}
	s.observe(wire.OpReadProperty, wire.StatusSuccess)
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleWriteProperty(c echo.Context) error {
	var v any
	if err := c.Echo().JSONSerializer.Deserialize(c, &v); err != nil {
		s.observe(wire.OpWriteProperty, wire.StatusBadRequest)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if err := s.host.WriteProperty(c.Request().Context(), c.Param("key"), v); err != nil {
		return s.interactionError(c, wire.OpWriteProperty, err)
	}
	s.observe(wire.OpWriteProperty, wire.StatusSuccess)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleInvokeAction(c echo.Context) error {
	var input any
	if err := c.Echo().JSONSerializer.Deserialize(c, &input); err != nil && !errors.Is(err, io.EOF) {
		s.observe(wire.OpInvokeAction, wire.StatusBadRequest)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	out, err := s.host.InvokeAction(c.Request().Context(), c.Param("key"), input)
	if err != nil {
		return s.interactionError(c, wire.OpInvokeAction, err)
	}
	s.observe(wire.OpInvokeAction, wire.StatusSuccess)
	if out == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) interactionError(c echo.Context, op wire.Operation, err error) error {
	status := service.StatusForError(err)
	s.observe(op, status)
	return c.JSON(httpStatus(status), echo.Map{"error": err.Error()})
}

func (s *Server) observe(op wire.Operation, status wire.Status) {
	s.config.Metrics.ObserveInteraction(metrics.BindingHTTP, op.String(), status.String())
}

func httpStatus(s wire.Status) int {
	switch s {
	case wire.StatusSuccess:
		return http.StatusOK
	case wire.StatusBadRequest:
		return http.StatusBadRequest
	case wire.StatusNotFound:
		return http.StatusNotFound
	case wire.StatusNotAllowed:
		return http.StatusMethodNotAllowed
	case wire.StatusOutOfRange:
		return http.StatusRequestedRangeNotSatisfiable
	case wire.StatusPreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
