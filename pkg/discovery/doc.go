// Package discovery implements DNS-SD advertisement and browsing of Things.
//
// A device advertises one instance of _wot._tcp, normally named after the
// Thing title. TXT records carry:
//
//	td      path of the Thing Description, e.g. /.well-known/wot
//	type    Thing, or Directory for a Thing Description directory
//	scheme  URI scheme of the binding (optional)
//
// Browsing aggregates entries seen on several interfaces into a single
// ThingService per instance name.
package discovery
