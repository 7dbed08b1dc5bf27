package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/wot-td/wot-go/pkg/service"
)

//go:embed lamp.yaml
var lampDefinition []byte

// fadeStep is the interval between brightness updates while fading.
const fadeStep = 100 * time.Millisecond

// wireLamp registers the lamp's property and action handlers on host.
// status follows on, toggle flips on, and fade moves brightness towards a
// target in the background until ctx is done.
func wireLamp(ctx context.Context, host *service.Host, logger *slog.Logger) error {
	if err := host.SetProperty("on", false); err != nil {
		return err
	}
	if err := host.SetProperty("brightness", int64(100)); err != nil {
		return err
	}

	host.HandleProperty("status", func(ctx context.Context) (any, error) {
		on, err := host.ReadProperty(ctx, "on")
		if err != nil {
			return nil, err
		}
		if b, _ := on.(bool); b {
			return "on", nil
		}
		return "off", nil
	}, nil)

	host.HandleAction("toggle", func(ctx context.Context, _ any) (any, error) {
		on, err := host.ReadProperty(ctx, "on")
		if err != nil {
			return nil, err
		}
		b, _ := on.(bool)
		return !b, host.SetProperty("on", !b)
	})

	host.HandleAction("fade", func(_ context.Context, input any) (any, error) {
		args, _ := input.(map[string]any)
		to, ok := number(args["to"])
		if !ok || to < 0 || to > 100 {
			return nil, fmt.Errorf("%w: to must be 0..100", service.ErrInvalidInput)
		}
		seconds, _ := number(args["seconds"])
		go fade(ctx, host, logger, int64(to), time.Duration(seconds*float64(time.Second)))
		return nil, nil
	})
	return nil
}

func fade(ctx context.Context, host *service.Host, logger *slog.Logger, to int64, d time.Duration) {
	cur, err := host.ReadProperty(ctx, "brightness")
	if err != nil {
		return
	}
	from, _ := number(cur)
	steps := int(d / fadeStep)
	if steps < 1 {
		steps = 1
	}

	ticker := time.NewTicker(fadeStep)
	defer ticker.Stop()
	for i := 1; i <= steps; i++ {
		level := int64(math.Round(from + (float64(to)-from)*float64(i)/float64(steps)))
		if err := host.SetProperty("brightness", level); err != nil {
			logger.Warn("fade stopped", "error", err)
			return
		}
		if i == steps {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	logger.Debug("fade complete", "brightness", to)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
