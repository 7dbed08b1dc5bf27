// Command wot-device is an example Web of Things device.
//
// It serves a dimmable LED lamp over two bindings:
//   - the framed binding, where clients fetch the Thing Description block by
//     block and read, write and invoke affordances
//   - the HTTP binding, serving /.well-known/wot with Range support plus
//     property and action routes and Prometheus /metrics
//
// The Thing is advertised as _wot._tcp via mDNS.
//
// Usage:
//
//	wot-device [flags]
//
// Flags:
//
//	-thing string          Thing definition file (default: built-in lamp)
//	-port int              Framed binding port (default 5683)
//	-http-port int         HTTP binding port, 0 disables it (default 8080)
//	-tls                   Serve both bindings over TLS with a self-signed certificate
//	-acme-host string      Serve HTTPS with an ACME certificate for this host name
//	-mdns                  Advertise the Thing via mDNS (default true)
//	-interface string      Network interface for mDNS (default: all)
//	-protocol-log string   Write protocol events to this file
//	-log-level string      Log level: debug, info, warn, error (default "info")
//	-interactive           Start the interactive shell
//	-state-dir string      Directory for persisted property values
//	-reset                 Clear persisted state before starting
//
// Examples:
//
//	# Start the lamp with the shell
//	wot-device -interactive
//
//	# Serve a custom Thing over TLS, recording protocol events
//	wot-device -thing thermostat.yaml -tls -protocol-log events.cbor
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wot-td/wot-go/cmd/wot-device/interactive"
	"github.com/wot-td/wot-go/pkg/discovery"
	"github.com/wot-td/wot-go/pkg/httpbinding"
	"github.com/wot-td/wot-go/pkg/log"
	"github.com/wot-td/wot-go/pkg/metrics"
	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/persistence"
	"github.com/wot-td/wot-go/pkg/service"
	"github.com/wot-td/wot-go/pkg/thingconfig"
	"github.com/wot-td/wot-go/pkg/transport"
)

// Config holds the device configuration.
type Config struct {
	ThingFile   string
	Port        int
	HTTPPort    int
	TLS         bool
	ACMEHost    string
	MDNS        bool
	Interface   string
	ProtocolLog string
	LogLevel    string
	Interactive bool
	StateDir    string
	Reset       bool
}

var config Config

func init() {
	flag.StringVar(&config.ThingFile, "thing", "", "Thing definition file (default: built-in lamp)")
	flag.IntVar(&config.Port, "port", transport.DefaultPort, "Framed binding port")
	flag.IntVar(&config.HTTPPort, "http-port", 8080, "HTTP binding port, 0 disables it")
	flag.BoolVar(&config.TLS, "tls", false, "Serve both bindings over TLS with a self-signed certificate")
	flag.StringVar(&config.ACMEHost, "acme-host", "", "Serve HTTPS with an ACME certificate for this host name")
	flag.BoolVar(&config.MDNS, "mdns", true, "Advertise the Thing via mDNS")
	flag.StringVar(&config.Interface, "interface", "", "Network interface for mDNS (default: all)")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "Write protocol events to this file")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Interactive, "interactive", false, "Start the interactive shell")
	flag.StringVar(&config.StateDir, "state-dir", "", "Directory for persisted property values")
	flag.BoolVar(&config.Reset, "reset", false, "Clear persisted state before starting")
}

func main() {
	flag.Parse()

	logger, err := setupLogging(config.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(logger); err != nil {
		logger.Error("device failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	thing, err := loadThing()
	if err != nil {
		return err
	}
	n, err := httpbinding.ApplyDefaultMethods(thing)
	if err != nil {
		return fmt.Errorf("annotating forms: %w", err)
	}
	logger.Debug("forms annotated with HTTP methods", "count", n)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host := service.NewHost(thing)
	if config.ThingFile == "" {
		if err := wireLamp(ctx, host, logger); err != nil {
			return err
		}
	}

	if config.StateDir != "" {
		store := persistence.NewStateStore(filepath.Join(config.StateDir, "thing.json"))
		if config.Reset {
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clearing state: %w", err)
			}
		}
		if err := restoreState(host, store, logger); err != nil {
			return fmt.Errorf("restoring state: %w", err)
		}
		persistState(host, store, logger)
	}

	protocolLogger, closeLog, err := setupProtocolLog(logger)
	if err != nil {
		return err
	}
	defer closeLog()

	m := metrics.New()

	svcConfig := service.DefaultConfig()
	svcConfig.ListenAddress = fmt.Sprintf(":%d", config.Port)
	svcConfig.Logger = logger
	svcConfig.ProtocolLogger = protocolLogger
	svcConfig.Metrics = m

	var cert tls.Certificate
	if config.TLS {
		hostname, _ := os.Hostname()
		if cert, err = transport.SelfSignedCertificate(hostname); err != nil {
			return fmt.Errorf("creating certificate: %w", err)
		}
		svcConfig.TLSConfig = transport.ServerTLSConfig(cert)
	}

	svc := service.NewThingService(host, svcConfig)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting framed binding: %w", err)
	}
	defer svc.Stop()
	logger.Info("framed binding listening", "addr", svc.Addr().String(), "tls", config.TLS)

	var web *httpbinding.Server
	if config.HTTPPort > 0 {
		httpConfig := httpbinding.DefaultConfig()
		httpConfig.Address = fmt.Sprintf(":%d", config.HTTPPort)
		httpConfig.Logger = logger
		httpConfig.ProtocolLogger = protocolLogger
		httpConfig.Metrics = m
		if config.TLS {
			httpConfig.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{cert}}
		} else if config.ACMEHost != "" {
			httpConfig.ACMEHosts = []string{config.ACMEHost}
		}
		web = httpbinding.NewServer(host, httpConfig)
		if err := web.Start(); err != nil {
			return fmt.Errorf("starting HTTP binding: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := web.Stop(stopCtx); err != nil {
				logger.Warn("HTTP binding shutdown", "error", err)
			}
		}()
	}

	if config.MDNS {
		adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{
			Interface: config.Interface,
			TTL:       discovery.DefaultTTL,
		})
		if err := adv.Advertise(ctx, advertisedInfo(host, web)); err != nil {
			logger.Warn("mDNS advertisement failed", "error", err)
		} else {
			defer adv.Stop()
			logger.Info("advertising", "service", discovery.ServiceTypeThing)
		}
	}

	if config.Interactive {
		shell, err := interactive.New(host, &deviceStatus{svc: svc, web: web})
		if err != nil {
			return err
		}
		// Route logs through readline so they don't garble the prompt.
		slog.SetDefault(slog.New(slog.NewTextHandler(shell.Stdout(), &slog.HandlerOptions{Level: logLevel(config.LogLevel)})))
		go shell.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return nil
}

func loadThing() (*model.Thing, error) {
	if config.ThingFile != "" {
		return thingconfig.Load(config.ThingFile)
	}
	return thingconfig.Parse(lampDefinition)
}

func advertisedInfo(host *service.Host, web *httpbinding.Server) *discovery.ThingInfo {
	info := &discovery.ThingInfo{TDPath: httpbinding.WellKnownPath, Type: discovery.TypeThing}
	host.View(func(t *model.Thing) {
		info.InstanceName = discovery.InstanceName(t.Title())
	})
	if web != nil {
		info.Port = uint16(config.HTTPPort)
		info.Scheme = "http"
		if config.TLS || config.ACMEHost != "" {
			info.Scheme = "https"
		}
	} else {
		info.Port = uint16(config.Port)
	}
	return info
}

func setupProtocolLog(logger *slog.Logger) (log.Logger, func(), error) {
	loggers := []log.Logger{log.NewSlogAdapter(logger)}
	closeFn := func() {}
	if config.ProtocolLog != "" {
		fl, err := log.NewFileLogger(config.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("opening protocol log: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing protocol log", "error", err)
			}
		}
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}

func setupLogging(level string) (*slog.Logger, error) {
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(level)}))
	slog.SetDefault(logger)
	return logger, nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// deviceStatus exposes the running bindings to the shell.
type deviceStatus struct {
	svc *service.ThingService
	web *httpbinding.Server
}

func (s *deviceStatus) FramedAddr() string {
	if a := s.svc.Addr(); a != nil {
		return a.String()
	}
	return ""
}

func (s *deviceStatus) HTTPAddr() string {
	if s.web == nil {
		return ""
	}
	if a := s.web.Addr(); a != nil {
		return a.String()
	}
	return ""
}

func (s *deviceStatus) Connections() int {
	return s.svc.ConnectionCount()
}
