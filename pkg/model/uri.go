package model

// URI is an IRI split into an optional scheme prefix and the remainder.
// Scheme carries the separator, e.g. "https://" or "urn:".
type URI struct {
	Scheme string
	Value  string
}

// NewURI returns a URI with no separate scheme part.
func NewURI(value string) *URI {
	return &URI{Value: value}
}

// String returns the full URI text.
func (u *URI) String() string {
	if u == nil {
		return ""
	}
	return u.Scheme + u.Value
}
