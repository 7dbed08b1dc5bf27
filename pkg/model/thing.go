package model

import (
	"time"

	"github.com/wot-td/wot-go/pkg/collection"
)

// VersionInfo carries the instance version of a Thing.
type VersionInfo struct {
	Instance string
}

// Link points to a related resource.
type Link struct {
	Href   *URI
	Type   MediaType
	Rel    string
	Anchor *URI
}

// Thing is the root of a Thing Description.
type Thing struct {
	Context      collection.List[ContextEntry]
	Types        TypeList
	ID           *URI
	Titles       MultiLangList
	Descriptions MultiLangList
	Version      *VersionInfo
	Created      *time.Time
	Modified     *time.Time
	Support      *URI
	Base         *URI

	Properties PropertyList
	Actions    ActionList
	Events     EventList
	Links      collection.List[Link]
	Forms      FormList

	SecurityDefinitions collection.List[SecurityDefinition]

	// DefaultLanguage selects which titles and descriptions entry is also
	// rendered as the untagged "title" and "description".
	DefaultLanguage string
}

// FindContext returns the context entry with the given key. Key-less
// entries are found with key "".
func (t *Thing) FindContext(key string) *ContextEntry {
	return t.Context.FindBy(contextKey, key)
}

// FindProperty returns the property named key, or nil.
func (t *Thing) FindProperty(key string) *PropertyAffordance {
	return t.Properties.FindBy(func(p *PropertyAffordance) string { return p.Key }, key)
}

// FindAction returns the action named key, or nil.
func (t *Thing) FindAction(key string) *ActionAffordance {
	return t.Actions.FindBy(func(a *ActionAffordance) string { return a.Key }, key)
}

// FindEvent returns the event named key, or nil.
func (t *Thing) FindEvent(key string) *EventAffordance {
	return t.Events.FindBy(func(e *EventAffordance) string { return e.Key }, key)
}

// FindSecurityDefinition returns the definition named key, or nil.
func (t *Thing) FindSecurityDefinition(key string) *SecurityDefinition {
	return FindSecurityDefinition(&t.SecurityDefinitions, key)
}

// FindLink returns the first link with the given relation, or nil.
func (t *Thing) FindLink(rel string) *Link {
	return t.Links.FindBy(func(l *Link) string { return l.Rel }, rel)
}

// Title returns the title in the default language, falling back to the
// first title.
func (t *Thing) Title() string {
	if m := FindLang(&t.Titles, t.DefaultLanguage); m != nil && t.DefaultLanguage != "" {
		return m.Value
	}
	if m := t.Titles.FindNth(0); m != nil {
		return m.Value
	}
	return ""
}

// FindSecurityDefinition returns the definition named key in l, or nil.
func FindSecurityDefinition(l *collection.List[SecurityDefinition], key string) *SecurityDefinition {
	return l.FindBy(func(d *SecurityDefinition) string { return d.Key }, key)
}
