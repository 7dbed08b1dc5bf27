// Package metrics exposes Prometheus collectors for Thing Description
// retrieval and affordance interactions.
//
// All Observe methods accept a nil *Metrics, which disables collection.
package metrics
