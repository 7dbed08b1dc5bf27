package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/wot-td/wot-go/pkg/blockwise"
	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/tdjson"
	"github.com/wot-td/wot-go/pkg/wire"
)

// Host owns a Thing model and the state behind its affordances.
//
// Rendering holds the read lock for the duration of one pass over the model
// and Update holds the write lock, so a block or document is never rendered
// from a half-modified model. Handlers are called without any lock held.
type Host struct {
	mu     sync.RWMutex
	thing  *model.Thing
	values map[string]any

	readers map[string]PropertyReader
	writers map[string]PropertyWriter
	actions map[string]ActionHandler

	handlersMu sync.RWMutex
	handlers   []EventHandler
}

// NewHost creates a host serving thing. The host takes ownership of the
// model; later changes must go through Update.
func NewHost(thing *model.Thing) *Host {
	return &Host{
		thing:   thing,
		values:  make(map[string]any),
		readers: make(map[string]PropertyReader),
		writers: make(map[string]PropertyWriter),
		actions: make(map[string]ActionHandler),
	}
}

// OnEvent registers a handler for host events.
func (h *Host) OnEvent(handler EventHandler) {
	h.handlersMu.Lock()
	h.handlers = append(h.handlers, handler)
	h.handlersMu.Unlock()
}

func (h *Host) emit(ev Event) {
	h.handlersMu.RLock()
	handlers := h.handlers
	h.handlersMu.RUnlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

// View calls fn with the model under the read lock. fn must not modify it.
func (h *Host) View(fn func(*model.Thing)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.thing)
}

// Update calls fn with the model under the write lock. Transfers in progress
// observe the change through the document ETag.
func (h *Host) Update(fn func(*model.Thing) error) error {
	h.mu.Lock()
	err := fn(h.thing)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	h.emit(Event{Type: EventThingUpdated})
	return nil
}

// Describe renders block b of the Thing Description.
func (h *Host) Describe(b wire.Block) (*blockwise.Result, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return blockwise.Render(h.thing, b)
}

// StreamDescription measures the Thing Description, then calls prepare
// with its size and ETag. prepare returns the destination and window to
// render, or a nil writer to send nothing. Both passes run under one read
// lock, so the streamed bytes match the size and ETag prepare saw.
func (h *Host) StreamDescription(prepare func(size int64, etag []byte) (io.Writer, *tdjson.Slicer)) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	size, etag, err := blockwise.Info(h.thing)
	if err != nil {
		return err
	}
	w, s := prepare(size, etag)
	if w == nil {
		return nil
	}
	return tdjson.Serialize(w, h.thing, s)
}

// WriteDescription renders the window s of the Thing Description to w.
func (h *Host) WriteDescription(w io.Writer, s *tdjson.Slicer) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return tdjson.Serialize(w, h.thing, s)
}

// DescriptionInfo returns the size and ETag of the current document.
func (h *Host) DescriptionInfo() (int64, []byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return blockwise.Info(h.thing)
}

// HandleProperty registers the reader and writer of property key. Either may
// be nil: reads then return the stored value and writes only store it.
func (h *Host) HandleProperty(key string, r PropertyReader, w PropertyWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r != nil {
		h.readers[key] = r
	}
	if w != nil {
		h.writers[key] = w
	}
}

// HandleAction registers the handler of action key.
func (h *Host) HandleAction(key string, fn ActionHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions[key] = fn
}

// SetProperty stores a property value on behalf of the device itself,
// bypassing the readOnly check that applies to consumers.
func (h *Host) SetProperty(key string, value any) error {
	h.mu.Lock()
	p := h.thing.FindProperty(key)
	if p == nil {
		h.mu.Unlock()
		return fmt.Errorf("%w: property %q", ErrNotFound, key)
	}
	v, err := coerceValue(p.Schema, value)
	if err == nil {
		h.values[key] = v
	}
	h.mu.Unlock()
	return err
}

// ReadProperty returns the value of property key.
func (h *Host) ReadProperty(ctx context.Context, key string) (any, error) {
	h.mu.RLock()
	p := h.thing.FindProperty(key)
	if p == nil {
		h.mu.RUnlock()
		return nil, fmt.Errorf("%w: property %q", ErrNotFound, key)
	}
	if p.Schema != nil && p.Schema.WriteOnly {
		h.mu.RUnlock()
		return nil, fmt.Errorf("%w: property %q is write-only", ErrNotAllowed, key)
	}
	reader := h.readers[key]
	value, stored := h.values[key]
	h.mu.RUnlock()

	if reader != nil {
		return reader(ctx)
	}
	if !stored {
		return nil, fmt.Errorf("%w: property %q has no value", ErrNoHandler, key)
	}
	return value, nil
}

// WriteProperty validates value against the property schema, passes it to
// the registered writer and stores it.
func (h *Host) WriteProperty(ctx context.Context, key string, value any) error {
	h.mu.RLock()
	p := h.thing.FindProperty(key)
	if p == nil {
		h.mu.RUnlock()
		return fmt.Errorf("%w: property %q", ErrNotFound, key)
	}
	if p.Schema != nil && p.Schema.ReadOnly {
		h.mu.RUnlock()
		return fmt.Errorf("%w: property %q is read-only", ErrNotAllowed, key)
	}
	v, err := coerceValue(p.Schema, value)
	writer := h.writers[key]
	h.mu.RUnlock()
	if err != nil {
		return err
	}

	if writer != nil {
		if err := writer(ctx, v); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.values[key] = v
	h.mu.Unlock()

	h.emit(Event{Type: EventPropertyWritten, Key: key, Value: v})
	return nil
}

// InvokeAction validates input against the action input schema and runs the
// registered handler.
func (h *Host) InvokeAction(ctx context.Context, key string, input any) (any, error) {
	h.mu.RLock()
	a := h.thing.FindAction(key)
	if a == nil {
		h.mu.RUnlock()
		return nil, fmt.Errorf("%w: action %q", ErrNotFound, key)
	}
	var err error
	if a.Input != nil {
		input, err = coerceValue(a.Input, input)
	}
	fn := h.actions[key]
	h.mu.RUnlock()

	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: action %q", ErrNoHandler, key)
	}

	out, err := fn(ctx, input)
	if err != nil {
		return nil, err
	}
	h.emit(Event{Type: EventActionInvoked, Key: key, Value: out})
	return out, nil
}

// StoredValues returns a copy of the stored property values. Values produced
// by a registered reader are not included.
func (h *Host) StoredValues() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]any, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// PropertyKeys returns the property keys in sorted order.
func (h *Host) PropertyKeys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, h.thing.Properties.Len())
	for p := range h.thing.Properties.All() {
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	return keys
}

// ActionKeys returns the action keys in sorted order.
func (h *Host) ActionKeys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, h.thing.Actions.Len())
	for a := range h.thing.Actions.All() {
		keys = append(keys, a.Key)
	}
	sort.Strings(keys)
	return keys
}
