package main

import (
	"log/slog"
	"sort"

	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/persistence"
	"github.com/wot-td/wot-go/pkg/service"
)

// restoreState applies persisted property values to host. Values of
// properties the Thing no longer has, or that fail validation, are skipped.
func restoreState(host *service.Host, store *persistence.StateStore, logger *slog.Logger) error {
	state, err := store.Load()
	if err != nil || state == nil {
		return err
	}

	keys := make([]string, 0, len(state.Properties))
	for k := range state.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := host.SetProperty(k, state.Properties[k]); err != nil {
			logger.Warn("skipping persisted value", "property", k, "error", err)
		}
	}
	logger.Info("restored state", "path", store.Path(), "properties", len(keys), "saved_at", state.SavedAt)
	return nil
}

// persistState saves the stored property values after every write or action.
func persistState(host *service.Host, store *persistence.StateStore, logger *slog.Logger) {
	host.OnEvent(func(ev service.Event) {
		if ev.Type != service.EventPropertyWritten && ev.Type != service.EventActionInvoked {
			return
		}
		state := &persistence.ThingState{Properties: host.StoredValues()}
		host.View(func(t *model.Thing) {
			if t.ID != nil {
				state.ThingID = t.ID.String()
			}
		})
		if err := store.Save(state); err != nil {
			logger.Warn("saving state", "error", err)
		}
	})
}
