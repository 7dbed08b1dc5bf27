package tdjson

import "github.com/wot-td/wot-go/pkg/model"

// affordanceHead writes the affordance annotations. A property inlines its
// schema, so the schema's annotations are merged in rather than repeated.
func (e *encoder) affordanceHead(obj *scope, a *model.InteractionAffordance, inlined *model.DataSchema) {
	types := []*model.TypeList{&a.Types}
	titles := []*model.MultiLangList{&a.Titles}
	descriptions := []*model.MultiLangList{&a.Descriptions}
	if inlined != nil {
		types = append(types, &inlined.Types)
		titles = append(titles, &inlined.Titles)
		descriptions = append(descriptions, &inlined.Descriptions)
	}
	e.typeField(obj, types...)
	e.multiLang(obj, "titles", "title", titles...)
	e.multiLang(obj, "descriptions", "description", descriptions...)
}

func (e *encoder) affordanceTail(obj *scope, a *model.InteractionAffordance) {
	if !a.URIVariables.Empty() {
		obj.key("uriVariables")
		e.schemaMap(&a.URIVariables)
	}
	obj.key("forms")
	e.forms(&a.Forms)
}

func (e *encoder) property(p *model.PropertyAffordance) {
	obj := e.object()
	e.affordanceHead(obj, &p.InteractionAffordance, p.Schema)
	obj.key("observable")
	e.boolean(p.Observable)
	if p.Schema != nil {
		e.schemaFields(obj, p.Schema, true)
	}
	e.affordanceTail(obj, &p.InteractionAffordance)
	obj.closeObject()
}

func (e *encoder) action(a *model.ActionAffordance) {
	obj := e.object()
	e.affordanceHead(obj, &a.InteractionAffordance, nil)
	if a.Input != nil {
		obj.key("input")
		e.schema(a.Input)
	}
	if a.Output != nil {
		obj.key("output")
		e.schema(a.Output)
	}
	obj.key("safe")
	e.boolean(a.Safe)
	obj.key("idempotent")
	e.boolean(a.Idempotent)
	e.affordanceTail(obj, &a.InteractionAffordance)
	obj.closeObject()
}

func (e *encoder) event(ev *model.EventAffordance) {
	obj := e.object()
	e.affordanceHead(obj, &ev.InteractionAffordance, nil)
	if ev.Subscription != nil {
		obj.key("subscription")
		e.schema(ev.Subscription)
	}
	if ev.Data != nil {
		obj.key("data")
		e.schema(ev.Data)
	}
	if ev.Cancellation != nil {
		obj.key("cancellation")
		e.schema(ev.Cancellation)
	}
	e.affordanceTail(obj, &ev.InteractionAffordance)
	obj.closeObject()
}
