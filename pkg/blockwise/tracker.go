package blockwise

import (
	"bytes"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrDocumentChanged indicates the document ETag differs from the one the
// transfer started with.
var ErrDocumentChanged = errors.New("document changed during transfer")

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	// TransferTTL is how long a transfer is remembered after its last block.
	TransferTTL time.Duration

	// CleanupInterval is how often expired transfers are purged.
	CleanupInterval time.Duration
}

// DefaultTrackerConfig returns the default tracker settings.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		TransferTTL:     30 * time.Second,
		CleanupInterval: time.Minute,
	}
}

// Tracker remembers the ETag each client's transfer started with, so that a
// block served after the Thing was modified is refused instead of being
// stitched into a mixed document.
type Tracker struct {
	transfers *cache.Cache
}

// NewTracker creates a tracker.
func NewTracker(config TrackerConfig) *Tracker {
	if config.TransferTTL <= 0 {
		config.TransferTTL = DefaultTrackerConfig().TransferTTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultTrackerConfig().CleanupInterval
	}
	return &Tracker{
		transfers: cache.New(config.TransferTTL, config.CleanupInterval),
	}
}

// Check records or verifies the transfer of client. Block 0 starts a new
// transfer under current. A later block must match the ETag the client
// presents, or failing that the ETag the transfer started with.
// Finished transfers (more == false) are forgotten.
func (t *Tracker) Check(client string, num uint32, presented, current []byte, more bool) error {
	var expected []byte
	switch {
	case num == 0:
	case len(presented) > 0:
		expected = presented
	default:
		if v, ok := t.transfers.Get(client); ok {
			expected = v.([]byte)
		}
	}

	if expected != nil && !bytes.Equal(expected, current) {
		t.transfers.Delete(client)
		return ErrDocumentChanged
	}

	if more {
		t.transfers.Set(client, current, cache.DefaultExpiration)
	} else {
		t.transfers.Delete(client)
	}
	return nil
}

// Forget drops the transfer state of client, e.g. when its connection closes.
func (t *Tracker) Forget(client string) {
	t.transfers.Delete(client)
}

// Active returns the number of transfers in progress.
func (t *Tracker) Active() int {
	return t.transfers.ItemCount()
}
