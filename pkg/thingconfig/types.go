package thingconfig

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition errors.
var (
	ErrNoSecurity      = errors.New("no security definitions")
	ErrUnknownSecurity = errors.New("unknown security definition")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrInvalidValue    = errors.New("invalid value")
	ErrMissingRequired = errors.New("missing required field")
	ErrSchemaTooDeep   = errors.New("schema nested too deep")
)

// RawThing is a Thing definition loaded from YAML.
type RawThing struct {
	ID              string            `yaml:"id"` // default: urn:uuid:<random>
	Context         []RawContextEntry `yaml:"context"`
	Types           []string          `yaml:"types"`
	Title           string            `yaml:"title"`
	Titles          map[string]string `yaml:"titles"` // language tag > text
	Description     string            `yaml:"description"`
	Descriptions    map[string]string `yaml:"descriptions"`
	DefaultLanguage string            `yaml:"defaultLanguage"`
	Version         string            `yaml:"version"`
	Created         *time.Time        `yaml:"created"`
	Modified        *time.Time        `yaml:"modified"`
	Support         string            `yaml:"support"`
	Base            string            `yaml:"base"`
	SecurityDefs    []RawSecurityDef  `yaml:"securityDefinitions"`
	Security        []string          `yaml:"security"`
	Properties      []RawProperty     `yaml:"properties"`
	Actions         []RawAction       `yaml:"actions"`
	Events          []RawEvent        `yaml:"events"`
	Links           []RawLink         `yaml:"links"`
	Forms           []RawForm         `yaml:"forms"`
}

// RawContextEntry is an additional @context entry. An entry without a
// prefix is rendered as a bare IRI.
type RawContextEntry struct {
	Prefix string `yaml:"prefix"`
	IRI    string `yaml:"iri"`
}

// RawSecurityDef is a named security scheme. Only the fields of the
// selected scheme are used.
type RawSecurityDef struct {
	Key           string   `yaml:"key"`
	Scheme        string   `yaml:"scheme"` // nosec, basic, digest, apikey, bearer, psk, oauth2
	Types         []string `yaml:"types"`
	Description   string   `yaml:"description"`
	Proxy         string   `yaml:"proxy"`
	In            string   `yaml:"in"` // header, query, body, cookie
	Name          string   `yaml:"name"`
	QoP           string   `yaml:"qop"` // auth, auth-int
	Authorization string   `yaml:"authorization"`
	Alg           string   `yaml:"alg"`
	Format        string   `yaml:"format"`
	Identity      string   `yaml:"identity"`
	Token         string   `yaml:"token"`
	Refresh       string   `yaml:"refresh"`
	Scopes        []string `yaml:"scopes"`
	Flow          string   `yaml:"flow"`
}

// RawAffordance holds the fields shared by properties, actions and events.
type RawAffordance struct {
	Key          string            `yaml:"key"`
	Types        []string          `yaml:"types"`
	Title        string            `yaml:"title"`
	Titles       map[string]string `yaml:"titles"`
	Description  string            `yaml:"description"`
	Descriptions map[string]string `yaml:"descriptions"`
	URIVariables []RawNamedSchema  `yaml:"uriVariables"`
	Forms        []RawForm         `yaml:"forms"`
}

// RawProperty is a property affordance. Its data schema is inlined.
type RawProperty struct {
	RawAffordance `yaml:",inline"`
	Observable    bool      `yaml:"observable"`
	Schema        RawSchema `yaml:"schema"`
}

// RawAction is an action affordance.
type RawAction struct {
	RawAffordance `yaml:",inline"`
	Input         *RawSchema `yaml:"input"`
	Output        *RawSchema `yaml:"output"`
	Safe          bool       `yaml:"safe"`
	Idempotent    bool       `yaml:"idempotent"`
}

// RawEvent is an event affordance.
type RawEvent struct {
	RawAffordance `yaml:",inline"`
	Subscription  *RawSchema `yaml:"subscription"`
	Data          *RawSchema `yaml:"data"`
	Cancellation  *RawSchema `yaml:"cancellation"`
}

// RawSchema is a data schema.
type RawSchema struct {
	Type        string           `yaml:"type"` // object, array, string, number, integer, boolean, null
	Types       []string         `yaml:"types"`
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Const       *string          `yaml:"const"`
	Unit        string           `yaml:"unit"`
	Enum        []string         `yaml:"enum"`
	OneOf       []RawSchema      `yaml:"oneOf"`
	ReadOnly    bool             `yaml:"readOnly"`
	WriteOnly   bool             `yaml:"writeOnly"`
	Format      string           `yaml:"format"`
	Minimum     *float64         `yaml:"minimum"`
	Maximum     *float64         `yaml:"maximum"`
	Items       []RawSchema      `yaml:"items"`
	MinItems    *uint32          `yaml:"minItems"`
	MaxItems    *uint32          `yaml:"maxItems"`
	Properties  []RawNamedSchema `yaml:"properties"`
	Required    []string         `yaml:"required"`
}

// RawNamedSchema is a schema in a keyed map, e.g. object properties.
type RawNamedSchema struct {
	Name      string `yaml:"name"`
	RawSchema `yaml:",inline"`
}

// RawForm is a form.
type RawForm struct {
	Href          string   `yaml:"href"`
	Op            []string `yaml:"op"`
	ContentType   string   `yaml:"contentType"` // e.g. "application/json; charset=utf-8"
	ContentCoding string   `yaml:"contentCoding"`
	Subprotocol   string   `yaml:"subprotocol"`
	Security      []string `yaml:"security"`
	Scopes        []string `yaml:"scopes"`
	Response      string   `yaml:"response"` // response content type
}

// RawLink is a link to a related resource.
type RawLink struct {
	Href   string `yaml:"href"`
	Type   string `yaml:"type"`
	Rel    string `yaml:"rel"`
	Anchor string `yaml:"anchor"`
}

// ParseThingDef parses a Thing definition from YAML bytes without
// building it.
func ParseThingDef(data []byte) (*RawThing, error) {
	var def RawThing
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing thing def: %w", err)
	}
	return &def, nil
}
