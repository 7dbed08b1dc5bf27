package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/wot-td/wot-go/pkg/log"
)

// Filter selects events. Zero fields match everything.
type Filter struct {
	ConnectionID string
	ThingID      string
	Target       string
	TimeStart    *time.Time
	TimeEnd      *time.Time
	Layer        *log.Layer
	Direction    *log.Direction
	Category     *log.Category
}

// Match reports whether event passes the filter.
func (f Filter) Match(event log.Event) bool {
	if f.ConnectionID != "" && !strings.HasPrefix(event.ConnectionID, f.ConnectionID) {
		return false
	}
	if f.ThingID != "" && event.ThingID != f.ThingID {
		return false
	}
	if f.Target != "" && (event.Message == nil || event.Message.Target != f.Target) {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && event.Timestamp.After(*f.TimeEnd) {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	return true
}

// FilterOptions are the string flags of the filter command.
type FilterOptions struct {
	ConnID    string
	ThingID   string
	Target    string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// Build parses the options into a Filter.
func (o FilterOptions) Build() (Filter, error) {
	f := Filter{ConnectionID: o.ConnID, ThingID: o.ThingID, Target: o.Target}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid time-start format: %w", err)
		}
		f.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid time-end format: %w", err)
		}
		f.TimeEnd = &t
	}
	if o.Layer != "" {
		l, err := ParseLayer(o.Layer)
		if err != nil {
			return f, err
		}
		f.Layer = &l
	}
	if o.Direction != "" {
		d, err := ParseDirection(o.Direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategory(o.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	return f, nil
}

// RunFilter copies the events of path matching filter to output and returns
// how many were written.
func RunFilter(path, output string, filter Filter) (int, error) {
	out, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer out.Close()

	count := 0
	err = readFile(path, func(event log.Event) error {
		if filter.Match(event) {
			out.Log(event)
			count++
		}
		return nil
	})
	return count, err
}

// ParseLayer parses a layer name (case-insensitive).
func ParseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "service":
		return log.LayerService, nil
	case "http":
		return log.LayerHTTP, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, service or http)", s)
	}
}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state or error)", s)
	}
}
