package tdjson

import (
	"bytes"
	"io"

	"github.com/wot-td/wot-go/pkg/model"
)

// Serialize renders thing as a JSON Thing Description and writes the part
// inside the slicer window to w. A nil slicer writes the whole document.
// The slicer cursor is reset on entry and holds the full document length
// on return.
//
// The model is validated before anything is written, so an invalid Thing
// never yields partial output.
func Serialize(w io.Writer, thing *model.Thing, s *Slicer) error {
	if err := Validate(thing); err != nil {
		return err
	}
	if s == nil {
		s = Full()
	}
	s.Cur = 0

	ww := s.Writer(w)
	e := &encoder{w: ww, lang: thing.DefaultLanguage}
	e.thing(thing)
	return ww.Err()
}

// Size returns the length in bytes of the rendered document.
func Size(thing *model.Thing) (int64, error) {
	s := Full()
	if err := Serialize(io.Discard, thing, s); err != nil {
		return 0, err
	}
	return s.Cur, nil
}

// Marshal renders the whole document into memory.
func Marshal(thing *model.Thing) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, thing, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *encoder) thing(t *model.Thing) {
	obj := e.object()

	obj.key("@context")
	if t.Context.Empty() {
		e.str(model.DefaultContext)
	} else {
		arr := e.array()
		arr.elem()
		e.str(model.DefaultContext)
		for c := range t.Context.All() {
			arr.elem()
			e.contextEntry(c)
		}
		arr.closeArray()
	}

	obj.key("securityDefinitions")
	defs := e.object()
	for d := range t.SecurityDefinitions.All() {
		defs.key(d.Key)
		e.securityScheme(d.Scheme)
	}
	defs.closeObject()

	obj.key("security")
	e.securityKeys(&t.SecurityDefinitions)

	if !t.Types.Empty() {
		obj.key("@type")
		e.types(&t.Types)
	}
	if t.ID != nil {
		obj.key("id")
		e.uri(t.ID)
	}
	e.multiLang(obj, "titles", "title", &t.Titles)
	e.multiLang(obj, "descriptions", "description", &t.Descriptions)

	if !t.Properties.Empty() {
		obj.key("properties")
		m := e.object()
		for p := range t.Properties.All() {
			m.key(p.Key)
			e.property(p)
		}
		m.closeObject()
	}
	if !t.Actions.Empty() {
		obj.key("actions")
		m := e.object()
		for a := range t.Actions.All() {
			m.key(a.Key)
			e.action(a)
		}
		m.closeObject()
	}
	if !t.Events.Empty() {
		obj.key("events")
		m := e.object()
		for ev := range t.Events.All() {
			m.key(ev.Key)
			e.event(ev)
		}
		m.closeObject()
	}

	if !t.Links.Empty() {
		obj.key("links")
		arr := e.array()
		for l := range t.Links.All() {
			arr.elem()
			e.link(l)
		}
		arr.closeArray()
	}
	if t.Base != nil {
		obj.key("base")
		e.uri(t.Base)
	}
	if t.Support != nil {
		obj.key("support")
		e.uri(t.Support)
	}
	if t.Version != nil {
		obj.key("version")
		v := e.object()
		v.key("instance")
		e.str(t.Version.Instance)
		v.closeObject()
	}
	if !t.Forms.Empty() {
		obj.key("forms")
		e.forms(&t.Forms)
	}
	if t.Created != nil {
		obj.key("created")
		e.date(t.Created)
	}
	if t.Modified != nil {
		obj.key("modified")
		e.date(t.Modified)
	}

	obj.closeObject()
}

func (e *encoder) contextEntry(c *model.ContextEntry) {
	if c.Key == "" {
		e.str(c.Value)
		return
	}
	obj := e.object()
	obj.key(c.Key)
	e.str(c.Value)
	obj.closeObject()
}

// types writes the values of every list as one array, skipping values an
// earlier list already holds.
func (e *encoder) types(lists ...*model.TypeList) {
	arr := e.array()
	for i, l := range lists {
		for t := range l.All() {
			if seenType(lists[:i], t.Value) {
				continue
			}
			arr.elem()
			e.str(t.Value)
		}
	}
	arr.closeArray()
}

// typeField writes "@type" when any of the lists has a value.
func (e *encoder) typeField(obj *scope, lists ...*model.TypeList) {
	for _, l := range lists {
		if !l.Empty() {
			obj.key("@type")
			e.types(lists...)
			return
		}
	}
}

func seenType(lists []*model.TypeList, value string) bool {
	for _, l := range lists {
		if model.FindType(l, value) != nil {
			return true
		}
	}
	return false
}

func (e *encoder) literals(l *model.LiteralList) {
	arr := e.array()
	for v := range l.All() {
		arr.elem()
		e.str(v.Value)
	}
	arr.closeArray()
}

// multiLang writes the tagged map under plural and, when an entry matches
// the default language, its value again under singular. Entries of later
// lists are merged in unless an earlier list already has their tag.
func (e *encoder) multiLang(obj *scope, plural, singular string, lists ...*model.MultiLangList) {
	empty := true
	for _, l := range lists {
		empty = empty && l.Empty()
	}
	if empty {
		return
	}

	var def *model.MultiLang
	obj.key(plural)
	m := e.object()
	for i, l := range lists {
		for t := range l.All() {
			if seenLang(lists[:i], t.Tag) {
				continue
			}
			m.key(t.Tag)
			e.str(t.Value)
			if def == nil && e.lang != "" && t.Tag == e.lang {
				def = t
			}
		}
	}
	m.closeObject()
	if def != nil {
		obj.key(singular)
		e.str(def.Value)
	}
}

func seenLang(lists []*model.MultiLangList, tag string) bool {
	for _, l := range lists {
		if model.FindLang(l, tag) != nil {
			return true
		}
	}
	return false
}

func (e *encoder) link(l *model.Link) {
	obj := e.object()
	obj.key("href")
	e.uri(l.Href)
	if l.Type != "" {
		obj.key("type")
		e.str(string(l.Type))
	}
	if l.Rel != "" {
		obj.key("rel")
		e.str(l.Rel)
	}
	if l.Anchor != nil {
		obj.key("anchor")
		e.uri(l.Anchor)
	}
	obj.closeObject()
}
