// Package service hosts a Thing and answers requests against it.
//
// A Host owns the Thing model, the stored property values and the
// affordance handlers. A ThingService exposes a Host over the framed
// transport:
//
//	host := service.NewHost(thing)
//	host.HandleAction("toggle", toggle)
//
//	svc := service.NewThingService(host, service.DefaultConfig())
//	svc.Start(ctx)
//	defer svc.Stop()
//
// GetDescription requests are answered one block at a time. Each block is
// rendered from the live model, and a blockwise.Tracker per connection
// refuses blocks once the model changed mid-transfer.
package service
