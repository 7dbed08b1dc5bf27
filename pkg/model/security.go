package model

// SecurityDefinition names a SecurityScheme. Things and Forms refer to
// definitions by Key.
type SecurityDefinition struct {
	Key    string
	Scheme *SecurityScheme
}

// SecurityScheme holds the fields shared by all schemes plus one
// variant-specific Details value. Nil Details renders as "nosec".
type SecurityScheme struct {
	Types        TypeList
	Descriptions MultiLangList
	Proxy        *URI
	Details      SchemeDetails
}

// Name returns the scheme name as written in the "scheme" field.
func (s *SecurityScheme) Name() string {
	if s == nil || s.Details == nil {
		return NoSecurity{}.SchemeName()
	}
	return s.Details.SchemeName()
}

// SchemeDetails is implemented by every security scheme variant.
type SchemeDetails interface {
	SchemeName() string
	isSchemeDetails()
}

// CredentialLocation is where a credential is carried in a request.
type CredentialLocation uint8

const (
	// InDefault leaves the location unspecified; schemes that always
	// carry a location render it as header.
	InDefault CredentialLocation = iota
	InHeader
	InQuery
	InBody
	InCookie
)

// String returns the location name.
func (c CredentialLocation) String() string {
	switch c {
	case InQuery:
		return "query"
	case InBody:
		return "body"
	case InCookie:
		return "cookie"
	default:
		return "header"
	}
}

// ParseCredentialLocation maps a location name to its value.
func ParseCredentialLocation(s string) (CredentialLocation, bool) {
	switch s {
	case "":
		return InDefault, true
	case "header":
		return InHeader, true
	case "query":
		return InQuery, true
	case "body":
		return InBody, true
	case "cookie":
		return InCookie, true
	}
	return InDefault, false
}

// QualityOfProtection is the digest scheme qop.
type QualityOfProtection uint8

const (
	QoPAuth QualityOfProtection = iota
	QoPAuthInt
)

// String returns the qop name.
func (q QualityOfProtection) String() string {
	if q == QoPAuthInt {
		return "auth-int"
	}
	return "auth"
}

// NoSecurity is the "nosec" scheme.
type NoSecurity struct{}

// BasicScheme is username and password authentication.
type BasicScheme struct {
	In   CredentialLocation
	Name string
}

// DigestScheme is digest access authentication.
type DigestScheme struct {
	QoP  QualityOfProtection
	In   CredentialLocation
	Name string
}

// APIKeyScheme is an opaque key carried in the request.
type APIKeyScheme struct {
	In   CredentialLocation
	Name string
}

// BearerScheme is token authentication.
type BearerScheme struct {
	Authorization *URI
	Alg           string
	Format        string
	In            CredentialLocation
	Name          string
}

// PSKScheme is pre-shared key authentication.
type PSKScheme struct {
	Identity string
}

// OAuth2Scheme is OAuth 2.0 authentication.
type OAuth2Scheme struct {
	Authorization *URI
	Token         *URI
	Refresh       *URI
	Scopes        LiteralList
	Flow          string
}

func (NoSecurity) SchemeName() string    { return "nosec" }
func (*BasicScheme) SchemeName() string  { return "basic" }
func (*DigestScheme) SchemeName() string { return "digest" }
func (*APIKeyScheme) SchemeName() string { return "apikey" }
func (*BearerScheme) SchemeName() string { return "bearer" }
func (*PSKScheme) SchemeName() string    { return "psk" }
func (*OAuth2Scheme) SchemeName() string { return "oauth2" }

func (NoSecurity) isSchemeDetails()    {}
func (*BasicScheme) isSchemeDetails()  {}
func (*DigestScheme) isSchemeDetails() {}
func (*APIKeyScheme) isSchemeDetails() {}
func (*BearerScheme) isSchemeDetails() {}
func (*PSKScheme) isSchemeDetails()    {}
func (*OAuth2Scheme) isSchemeDetails() {}
