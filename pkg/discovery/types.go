package discovery

import (
	"errors"
	"time"
)

// Service type constants for DNS-SD.
const (
	// ServiceTypeThing is the service type under which Things and
	// Thing Description directories are advertised.
	ServiceTypeThing = "_wot._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default port of the framed binding.
	DefaultPort = 5683

	// DefaultTDPath is where the Thing Description is served.
	DefaultTDPath = "/.well-known/wot"
)

// TXT record keys.
const (
	TXTKeyTDPath = "td"     // Path of the Thing Description
	TXTKeyType   = "type"   // Thing or Directory
	TXTKeyScheme = "scheme" // URI scheme of the binding (optional)
)

// Values of the type TXT key.
const (
	TypeThing     = "Thing"
	TypeDirectory = "Directory"
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the DNS record TTL used when none is configured.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrNotAdvertising      = errors.New("not advertising")
)

// ThingInfo is what a device advertises about its Thing.
type ThingInfo struct {
	// InstanceName is the DNS-SD instance name, usually the Thing title.
	InstanceName string

	// Port the binding listens on. Zero means DefaultPort.
	Port uint16

	// TDPath is the Thing Description path. Empty means DefaultTDPath.
	TDPath string

	// Type is TypeThing or TypeDirectory. Empty means TypeThing.
	Type string

	// Scheme is the URI scheme of the advertised binding, e.g. "http".
	Scheme string
}

// ThingService is a Thing found by browsing.
type ThingService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	TDPath string
	Type   string
	Scheme string
}
