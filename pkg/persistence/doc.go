// Package persistence keeps the runtime state of a Thing across restarts.
//
// The state is the last stored value of every property, written as JSON.
// The Thing Description itself is not persisted: it is rebuilt from its
// definition file on every start.
package persistence
