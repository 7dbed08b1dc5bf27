package service

import (
	"context"
	"errors"
	"time"

	"github.com/wot-td/wot-go/pkg/blockwise"
	"github.com/wot-td/wot-go/pkg/metrics"
	"github.com/wot-td/wot-go/pkg/tdjson"
	"github.com/wot-td/wot-go/pkg/wire"
)

// DefaultSZX is used when a GetDescription request carries no block.
const DefaultSZX = wire.MaxSZX

// ProtocolHandler answers wire requests against a Host.
type ProtocolHandler struct {
	host    *Host
	tracker *blockwise.Tracker
	metrics *metrics.Metrics
}

// NewProtocolHandler creates a handler. metrics may be nil.
func NewProtocolHandler(host *Host, tracker *blockwise.Tracker, m *metrics.Metrics) *ProtocolHandler {
	return &ProtocolHandler{host: host, tracker: tracker, metrics: m}
}

// HandleRequest processes req on behalf of client, the key under which
// block-wise transfer state is kept.
func (h *ProtocolHandler) HandleRequest(ctx context.Context, client string, req *wire.Request) *wire.Response {
	switch req.Operation {
	case wire.OpGetDescription:
		return h.handleGetDescription(client, req)
	case wire.OpReadProperty:
		v, err := h.host.ReadProperty(ctx, req.Target)
		return h.interaction(req, v, err)
	case wire.OpWriteProperty:
		err := h.host.WriteProperty(ctx, req.Target, req.Payload)
		return h.interaction(req, nil, err)
	case wire.OpInvokeAction:
		out, err := h.host.InvokeAction(ctx, req.Target, req.Payload)
		return h.interaction(req, out, err)
	default:
		return errorResponse(req, wire.StatusBadRequest, "unsupported operation")
	}
}

func (h *ProtocolHandler) handleGetDescription(client string, req *wire.Request) *wire.Response {
	b := wire.Block{SZX: DefaultSZX}
	if req.Block != nil {
		b = *req.Block
		b.More = false
	}

	start := time.Now()
	res, err := h.host.Describe(b)
	if err != nil {
		status := StatusForError(err)
		h.metrics.ObserveFailure(metrics.BindingFramed, status.String())
		return errorResponse(req, status, err.Error())
	}

	if h.tracker != nil {
		if err := h.tracker.Check(client, b.Num, req.ETag, res.ETag, res.Block.More); err != nil {
			h.metrics.ObserveFailure(metrics.BindingFramed, wire.StatusPreconditionFailed.String())
			resp := errorResponse(req, wire.StatusPreconditionFailed, err.Error())
			resp.ETag = res.ETag
			return resp
		}
		h.metrics.SetActiveTransfers(h.tracker.Active())
	}

	h.metrics.ObserveBlock(metrics.BindingFramed, len(res.Data), res.Size, time.Since(start))

	blk := res.Block
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Block:     &blk,
		ETag:      res.ETag,
		Size:      uint64(res.Size),
		Payload:   res.Data,
	}
}

func (h *ProtocolHandler) interaction(req *wire.Request, result any, err error) *wire.Response {
	status := wire.StatusSuccess
	if err != nil {
		status = StatusForError(err)
	}
	h.metrics.ObserveInteraction(metrics.BindingFramed, req.Operation.String(), status.String())

	if err != nil {
		return errorResponse(req, status, err.Error())
	}
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    wire.StatusSuccess,
		Payload:   result,
	}
}

// StatusForError maps service, blockwise and serializer errors to wire
// status codes.
func StatusForError(err error) wire.Status {
	switch {
	case err == nil:
		return wire.StatusSuccess
	case errors.Is(err, ErrNotFound):
		return wire.StatusNotFound
	case errors.Is(err, ErrNotAllowed), errors.Is(err, ErrNoHandler):
		return wire.StatusNotAllowed
	case errors.Is(err, ErrInvalidInput):
		return wire.StatusBadRequest
	case errors.Is(err, blockwise.ErrOutOfRange):
		return wire.StatusOutOfRange
	case errors.Is(err, blockwise.ErrDocumentChanged):
		return wire.StatusPreconditionFailed
	case errors.Is(err, tdjson.ErrDocumentInvalid):
		return wire.StatusDocumentInvalid
	default:
		return wire.StatusInternal
	}
}

func errorResponse(req *wire.Request, status wire.Status, msg string) *wire.Response {
	return &wire.Response{
		MessageID: req.MessageID,
		Status:    status,
		Payload:   msg,
	}
}
