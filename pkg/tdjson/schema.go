package tdjson

import "github.com/wot-td/wot-go/pkg/model"

func (e *encoder) schema(s *model.DataSchema) {
	obj := e.object()
	e.schemaFields(obj, s, false)
	obj.closeObject()
}

// schemaFields writes the members of s into obj. When inlined, the
// enclosing affordance has already written the annotations.
func (e *encoder) schemaFields(obj *scope, s *model.DataSchema, inlined bool) {
	if !inlined {
		e.typeField(obj, &s.Types)
		e.multiLang(obj, "titles", "title", &s.Titles)
		e.multiLang(obj, "descriptions", "description", &s.Descriptions)
	}

	if s.Payload != nil {
		obj.key("type")
		e.str(s.Payload.JSONType().String())
		e.payload(obj, s.Payload)
	}

	if s.Const != nil {
		obj.key("const")
		e.str(*s.Const)
	}
	e.optString(obj, "unit", s.Unit)
	if !s.OneOf.Empty() {
		obj.key("oneOf")
		e.schemas(&s.OneOf)
	}
	if !s.Enum.Empty() {
		obj.key("enum")
		e.literals(&s.Enum)
	}

	obj.key("readOnly")
	e.boolean(s.ReadOnly)
	obj.key("writeOnly")
	e.boolean(s.WriteOnly)

	e.optString(obj, "format", s.Format)
}

func (e *encoder) payload(obj *scope, p model.SchemaPayload) {
	switch p := p.(type) {
	case *model.ObjectSchema:
		if !p.Properties.Empty() {
			obj.key("properties")
			e.schemaMap(&p.Properties)
		}
		if !p.Required.Empty() {
			obj.key("required")
			e.literals(&p.Required)
		}
	case *model.ArraySchema:
		if !p.Items.Empty() {
			obj.key("items")
			e.schemas(&p.Items)
		}
		if p.MinItems != nil {
			obj.key("minItems")
			e.integer(int64(*p.MinItems))
		}
		if p.MaxItems != nil {
			obj.key("maxItems")
			e.integer(int64(*p.MaxItems))
		}
	case *model.NumberSchema:
		if p.Minimum != nil {
			obj.key("minimum")
			e.number(*p.Minimum)
		}
		if p.Maximum != nil {
			obj.key("maximum")
			e.number(*p.Maximum)
		}
	case *model.IntegerSchema:
		if p.Minimum != nil {
			obj.key("minimum")
			e.integer(*p.Minimum)
		}
		if p.Maximum != nil {
			obj.key("maximum")
			e.integer(*p.Maximum)
		}
	}
}

func (e *encoder) schemas(l *model.SchemaList) {
	arr := e.array()
	for s := range l.All() {
		arr.elem()
		e.schema(s)
	}
	arr.closeArray()
}

func (e *encoder) schemaMap(m *model.SchemaMap) {
	obj := e.object()
	for entry := range m.All() {
		obj.key(entry.Key)
		e.schema(entry.Schema)
	}
	obj.closeObject()
}
