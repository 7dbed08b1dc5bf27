// Package log provides structured protocol logging.
//
// Protocol capture is separate from operational logging (slog). It records
// a machine-readable trace of frames, decoded messages, transfer state and
// errors at the transport, wire, service and HTTP layers.
//
//	// Console, via slog at Debug level
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Console and a CBOR trace file
//	f, _ := log.NewFileLogger("/var/log/wot/device.wlog")
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(nil), f)
package log
