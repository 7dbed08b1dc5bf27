package thingconfig

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/tdjson"
)

// Load reads a Thing definition file and builds the model.
func Load(path string) (*model.Thing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds the model from a YAML Thing definition.
func Parse(data []byte) (*model.Thing, error) {
	def, err := ParseThingDef(data)
	if err != nil {
		return nil, err
	}
	return Build(def)
}

// Build turns a parsed definition into a Thing. The result renders as a
// complete document.
func Build(def *RawThing) (*model.Thing, error) {
	b := &builder{thing: &model.Thing{}, added: make(map[*RawSecurityDef]bool)}
	if err := b.build(def); err != nil {
		return nil, err
	}
	if err := tdjson.Validate(b.thing); err != nil {
		return nil, err
	}
	return b.thing, nil
}

// DefaultLanguage tags plain title and description texts when the
// definition names no language.
const DefaultLanguage = "en"

type builder struct {
	thing *model.Thing
	lang  string
	added map[*RawSecurityDef]bool
}

func (b *builder) build(def *RawThing) error {
	t := b.thing
	b.lang = def.DefaultLanguage
	if b.lang == "" {
		b.lang = DefaultLanguage
	}
	t.DefaultLanguage = b.lang

	if len(def.SecurityDefs) == 0 {
		return ErrNoSecurity
	}
	// The document lists every definition under "security", so the
	// explicit list only fixes their order.
	for _, name := range def.Security {
		if findRawSecurity(def.SecurityDefs, name) == nil {
			return fmt.Errorf("security: %w %q", ErrUnknownSecurity, name)
		}
	}
	for _, name := range def.Security {
		if err := b.addSecurity(findRawSecurity(def.SecurityDefs, name)); err != nil {
			return err
		}
	}
	for i := range def.SecurityDefs {
		if err := b.addSecurity(&def.SecurityDefs[i]); err != nil {
			return err
		}
	}

	for _, c := range def.Context {
		if c.IRI == "" {
			return fmt.Errorf("context: %w: iri", ErrMissingRequired)
		}
		if err := t.Context.Add(&model.ContextEntry{Key: c.Prefix, Value: c.IRI}); err != nil {
			return err
		}
	}
	if err := model.AddTypes(&t.Types, def.Types...); err != nil {
		return err
	}

	if def.ID != "" {
		t.ID = model.NewURI(def.ID)
	} else {
		t.ID = &model.URI{Scheme: "urn:", Value: "uuid:" + uuid.NewString()}
	}
	if err := b.addTexts("title", &t.Titles, def.Title, def.Titles); err != nil {
		return err
	}
	if err := b.addTexts("description", &t.Descriptions, def.Description, def.Descriptions); err != nil {
		return err
	}
	if def.Version != "" {
		t.Version = &model.VersionInfo{Instance: def.Version}
	}
	t.Created = def.Created
	t.Modified = def.Modified
	t.Support = optURI(def.Support)
	t.Base = optURI(def.Base)

	for i := range def.Properties {
		if err := b.addProperty(&def.Properties[i]); err != nil {
			return err
		}
	}
	for i := range def.Actions {
		if err := b.addAction(&def.Actions[i]); err != nil {
			return err
		}
	}
	for i := range def.Events {
		if err := b.addEvent(&def.Events[i]); err != nil {
			return err
		}
	}

	for _, l := range def.Links {
		if l.Href == "" {
			return fmt.Errorf("links: %w: href", ErrMissingRequired)
		}
		link := &model.Link{Href: model.NewURI(l.Href), Type: model.MediaType(l.Type), Rel: l.Rel, Anchor: optURI(l.Anchor)}
		if err := t.Links.Add(link); err != nil {
			return err
		}
	}
	return b.addForms("forms", &t.Forms, def.Forms)
}

func findRawSecurity(defs []RawSecurityDef, key string) *RawSecurityDef {
	for i := range defs {
		if defs[i].Key == key {
			return &defs[i]
		}
	}
	return nil
}

func (b *builder) addSecurity(raw *RawSecurityDef) error {
	if b.added[raw] {
		return nil
	}
	b.added[raw] = true

	where := "securityDefinitions." + raw.Key
	if raw.Key == "" {
		return fmt.Errorf("securityDefinitions: %w: key", ErrMissingRequired)
	}
	if b.thing.FindSecurityDefinition(raw.Key) != nil {
		return fmt.Errorf("%s: %w", where, ErrDuplicateKey)
	}

	scheme := &model.SecurityScheme{Proxy: optURI(raw.Proxy)}
	if err := model.AddTypes(&scheme.Types, raw.Types...); err != nil {
		return err
	}
	if err := b.addTexts(where, &scheme.Descriptions, raw.Description, nil); err != nil {
		return err
	}

	in, ok := model.ParseCredentialLocation(raw.In)
	if !ok {
		return fmt.Errorf("%s: %w: in %q", where, ErrInvalidValue, raw.In)
	}

	switch raw.Scheme {
	case "nosec":
		scheme.Details = model.NoSecurity{}
	case "basic":
		scheme.Details = &model.BasicScheme{In: in, Name: raw.Name}
	case "digest":
		qop := model.QoPAuth
		switch raw.QoP {
		case "", "auth":
		case "auth-int":
			qop = model.QoPAuthInt
		default:
			return fmt.Errorf("%s: %w: qop %q", where, ErrInvalidValue, raw.QoP)
		}
		scheme.Details = &model.DigestScheme{QoP: qop, In: in, Name: raw.Name}
	case "apikey":
		scheme.Details = &model.APIKeyScheme{In: in, Name: raw.Name}
	case "bearer":
		scheme.Details = &model.BearerScheme{
			Authorization: optURI(raw.Authorization),
			Alg:           raw.Alg,
			Format:        raw.Format,
			In:            in,
			Name:          raw.Name,
		}
	case "psk":
		scheme.Details = &model.PSKScheme{Identity: raw.Identity}
	case "oauth2":
		if raw.Flow == "" {
			return fmt.Errorf("%s: %w: flow", where, ErrMissingRequired)
		}
		oauth := &model.OAuth2Scheme{
			Authorization: optURI(raw.Authorization),
			Token:         optURI(raw.Token),
			Refresh:       optURI(raw.Refresh),
			Flow:          raw.Flow,
		}
		if err := model.AddLiterals(&oauth.Scopes, raw.Scopes...); err != nil {
			return err
		}
		scheme.Details = oauth
	default:
		return fmt.Errorf("%s: %w: scheme %q", where, ErrInvalidValue, raw.Scheme)
	}

	return b.thing.SecurityDefinitions.Add(&model.SecurityDefinition{Key: raw.Key, Scheme: scheme})
}

func (b *builder) addAffordance(where string, a *model.InteractionAffordance, raw *RawAffordance) error {
	if err := model.AddTypes(&a.Types, raw.Types...); err != nil {
		return err
	}
	if err := b.addTexts(where+".title", &a.Titles, raw.Title, raw.Titles); err != nil {
		return err
	}
	if err := b.addTexts(where+".description", &a.Descriptions, raw.Description, raw.Descriptions); err != nil {
		return err
	}
	if err := b.addSchemaMap(where+".uriVariables", &a.URIVariables, raw.URIVariables, 1); err != nil {
		return err
	}
	return b.addForms(where+".forms", &a.Forms, raw.Forms)
}

func (b *builder) addProperty(raw *RawProperty) error {
	if raw.Key == "" {
		return fmt.Errorf("properties: %w: key", ErrMissingRequired)
	}
	where := "properties." + raw.Key
	if b.thing.FindProperty(raw.Key) != nil {
		return fmt.Errorf("%s: %w", where, ErrDuplicateKey)
	}
	schema, err := b.buildSchema(where, &raw.Schema, 0)
	if err != nil {
		return err
	}
	p := &model.PropertyAffordance{Key: raw.Key, Observable: raw.Observable, Schema: schema}
	if err := b.addAffordance(where, &p.InteractionAffordance, &raw.RawAffordance); err != nil {
		return err
	}
	return b.thing.Properties.Add(p)
}

func (b *builder) addAction(raw *RawAction) error {
	if raw.Key == "" {
		return fmt.Errorf("actions: %w: key", ErrMissingRequired)
	}
	where := "actions." + raw.Key
	if b.thing.FindAction(raw.Key) != nil {
		return fmt.Errorf("%s: %w", where, ErrDuplicateKey)
	}
	a := &model.ActionAffordance{Key: raw.Key, Safe: raw.Safe, Idempotent: raw.Idempotent}
	var err error
	if a.Input, err = b.optSchema(where+".input", raw.Input); err != nil {
		return err
	}
	if a.Output, err = b.optSchema(where+".output", raw.Output); err != nil {
		return err
	}
	if err := b.addAffordance(where, &a.InteractionAffordance, &raw.RawAffordance); err != nil {
		return err
	}
	return b.thing.Actions.Add(a)
}

func (b *builder) addEvent(raw *RawEvent) error {
	if raw.Key == "" {
		return fmt.Errorf("events: %w: key", ErrMissingRequired)
	}
	where := "events." + raw.Key
	if b.thing.FindEvent(raw.Key) != nil {
		return fmt.Errorf("%s: %w", where, ErrDuplicateKey)
	}
	e := &model.EventAffordance{Key: raw.Key}
	var err error
	if e.Subscription, err = b.optSchema(where+".subscription", raw.Subscription); err != nil {
		return err
	}
	if e.Data, err = b.optSchema(where+".data", raw.Data); err != nil {
		return err
	}
	if e.Cancellation, err = b.optSchema(where+".cancellation", raw.Cancellation); err != nil {
		return err
	}
	if err := b.addAffordance(where, &e.InteractionAffordance, &raw.RawAffordance); err != nil {
		return err
	}
	return b.thing.Events.Add(e)
}

func (b *builder) addForms(where string, l *model.FormList, raws []RawForm) error {
	for i := range raws {
		f, err := b.buildForm(fmt.Sprintf("%s[%d]", where, i), &raws[i])
		if err != nil {
			return err
		}
		if err := l.Add(f); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) buildForm(where string, raw *RawForm) (*model.Form, error) {
	if raw.Href == "" {
		return nil, fmt.Errorf("%s: %w: href", where, ErrMissingRequired)
	}
	f := &model.Form{
		Href:          model.NewURI(raw.Href),
		ContentCoding: model.ContentCoding(raw.ContentCoding),
		Subprotocol:   raw.Subprotocol,
	}
	for _, name := range raw.Op {
		op, ok := model.ParseOperationType(name)
		if !ok {
			return nil, fmt.Errorf("%s: %w: op %q", where, ErrInvalidValue, name)
		}
		if err := f.AddOp(op); err != nil {
			return nil, err
		}
	}
	for _, name := range raw.Security {
		d := b.thing.FindSecurityDefinition(name)
		if d == nil {
			return nil, fmt.Errorf("%s: %w %q", where, ErrUnknownSecurity, name)
		}
		if err := f.Security.Add(d); err != nil {
			return nil, err
		}
	}
	if err := model.AddLiterals(&f.Scopes, raw.Scopes...); err != nil {
		return nil, err
	}

	var err error
	if f.ContentType, err = parseContentType(raw.ContentType); err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	if raw.Response != "" {
		ct, err := parseContentType(raw.Response)
		if err != nil {
			return nil, fmt.Errorf("%s.response: %w", where, err)
		}
		f.Response = &model.ExpectedResponse{ContentType: ct}
	}
	return f, nil
}

// parseContentType splits "type/subtype; key=value" into a ContentType.
func parseContentType(s string) (*model.ContentType, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	ct := &model.ContentType{MediaType: model.MediaType(strings.TrimSpace(parts[0]))}
	if !strings.Contains(string(ct.MediaType), "/") {
		return nil, fmt.Errorf("%w: content type %q", ErrInvalidValue, s)
	}
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: content type parameter %q", ErrInvalidValue, p)
		}
		if err := ct.Params.Add(&model.MediaTypeParam{Key: k, Value: v}); err != nil {
			return nil, err
		}
	}
	return ct, nil
}

func (b *builder) optSchema(where string, raw *RawSchema) (*model.DataSchema, error) {
	if raw == nil {
		return nil, nil
	}
	return b.buildSchema(where, raw, 0)
}

func (b *builder) buildSchema(where string, raw *RawSchema, depth int) (*model.DataSchema, error) {
	if depth >= tdjson.MaxSchemaDepth {
		return nil, fmt.Errorf("%s: %w", where, ErrSchemaTooDeep)
	}
	s := &model.DataSchema{
		Const:     raw.Const,
		Unit:      raw.Unit,
		ReadOnly:  raw.ReadOnly,
		WriteOnly: raw.WriteOnly,
		Format:    raw.Format,
	}
	if err := model.AddTypes(&s.Types, raw.Types...); err != nil {
		return nil, err
	}
	if err := b.addTexts(where, &s.Titles, raw.Title, nil); err != nil {
		return nil, err
	}
	if err := b.addTexts(where, &s.Descriptions, raw.Description, nil); err != nil {
		return nil, err
	}
	if err := model.AddLiterals(&s.Enum, raw.Enum...); err != nil {
		return nil, err
	}
	for i := range raw.OneOf {
		sub, err := b.buildSchema(fmt.Sprintf("%s.oneOf[%d]", where, i), &raw.OneOf[i], depth+1)
		if err != nil {
			return nil, err
		}
		if err := s.OneOf.Add(sub); err != nil {
			return nil, err
		}
	}

	switch raw.Type {
	case "":
	case "string":
		s.Payload = model.StringSchema{}
	case "boolean":
		s.Payload = model.BooleanSchema{}
	case "null":
		s.Payload = model.NullSchema{}
	case "number":
		s.Payload = &model.NumberSchema{Minimum: raw.Minimum, Maximum: raw.Maximum}
	case "integer":
		lo, err := integral(where+".minimum", raw.Minimum)
		if err != nil {
			return nil, err
		}
		hi, err := integral(where+".maximum", raw.Maximum)
		if err != nil {
			return nil, err
		}
		s.Payload = &model.IntegerSchema{Minimum: lo, Maximum: hi}
	case "array":
		arr := &model.ArraySchema{MinItems: raw.MinItems, MaxItems: raw.MaxItems}
		for i := range raw.Items {
			sub, err := b.buildSchema(fmt.Sprintf("%s.items[%d]", where, i), &raw.Items[i], depth+1)
			if err != nil {
				return nil, err
			}
			if err := arr.Items.Add(sub); err != nil {
				return nil, err
			}
		}
		s.Payload = arr
	case "object":
		obj := &model.ObjectSchema{}
		if err := b.addSchemaMap(where+".properties", &obj.Properties, raw.Properties, depth+1); err != nil {
			return nil, err
		}
		for _, name := range raw.Required {
			if model.FindSchema(&obj.Properties, name) == nil {
				return nil, fmt.Errorf("%s.required: %w: %q is not a property", where, ErrInvalidValue, name)
			}
		}
		if err := model.AddLiterals(&obj.Required, raw.Required...); err != nil {
			return nil, err
		}
		s.Payload = obj
	default:
		return nil, fmt.Errorf("%s: %w: type %q", where, ErrInvalidValue, raw.Type)
	}
	return s, nil
}

func (b *builder) addSchemaMap(where string, m *model.SchemaMap, raws []RawNamedSchema, depth int) error {
	for i := range raws {
		raw := &raws[i]
		if raw.Name == "" {
			return fmt.Errorf("%s[%d]: %w: name", where, i, ErrMissingRequired)
		}
		if model.FindSchema(m, raw.Name) != nil {
			return fmt.Errorf("%s.%s: %w", where, raw.Name, ErrDuplicateKey)
		}
		s, err := b.buildSchema(where+"."+raw.Name, &raw.RawSchema, depth)
		if err != nil {
			return err
		}
		if err := m.Add(&model.SchemaEntry{Key: raw.Name, Schema: s}); err != nil {
			return err
		}
	}
	return nil
}

func integral(where string, v *float64) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > 1<<53 {
		return nil, fmt.Errorf("%s: %w: %v is not an integer", where, ErrInvalidValue, *v)
	}
	n := int64(*v)
	return &n, nil
}

// addTexts adds plain tagged with the default language, followed by the
// tagged texts in tag order.
func (b *builder) addTexts(where string, l *model.MultiLangList, plain string, tagged map[string]string) error {
	if plain != "" {
		if _, dup := tagged[b.lang]; dup {
			return fmt.Errorf("%s: %w: language %q", where, ErrDuplicateKey, b.lang)
		}
		if err := l.Add(&model.MultiLang{Tag: b.lang, Value: plain}); err != nil {
			return err
		}
	}
	tags := make([]string, 0, len(tagged))
	for tag := range tagged {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if tag == "" {
			return fmt.Errorf("%s: %w: empty language tag", where, ErrInvalidValue)
		}
		if err := l.Add(&model.MultiLang{Tag: tag, Value: tagged[tag]}); err != nil {
			return err
		}
	}
	return nil
}

func optURI(s string) *model.URI {
	if s == "" {
		return nil
	}
	return model.NewURI(s)
}
