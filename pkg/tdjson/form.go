package tdjson

import "github.com/wot-td/wot-go/pkg/model"

func (e *encoder) forms(l *model.FormList) {
	arr := e.array()
	for f := range l.All() {
		arr.elem()
		e.form(f)
	}
	arr.closeArray()
}

func (e *encoder) form(f *model.Form) {
	obj := e.object()
	if !f.Ops.Empty() {
		obj.key("op")
		ops := e.array()
		for op := range f.Ops.All() {
			ops.elem()
			e.str(op.Type.String())
		}
		ops.closeArray()
	}
	obj.key("href")
	e.uri(f.Href)
	if f.ContentType != nil {
		obj.key("contentType")
		e.contentType(f.ContentType)
	}
	if f.ContentCoding != model.CodingNone {
		obj.key("contentCoding")
		e.str(string(f.ContentCoding))
	}
	e.optString(obj, "subprotocol", f.Subprotocol)
	if !f.Security.Empty() {
		obj.key("security")
		e.securityKeys(&f.Security)
	}
	if !f.Scopes.Empty() {
		obj.key("scopes")
		e.literals(&f.Scopes)
	}
	if f.Response != nil && f.Response.ContentType != nil {
		obj.key("response")
		r := e.object()
		r.key("contentType")
		e.contentType(f.Response.ContentType)
		r.closeObject()
	}
	for ext := range f.Extensions.All() {
		if ext.Renderer != nil {
			ext.Renderer.RenderExtension(e.w, ext.Name, ext.Data)
		}
	}
	obj.closeObject()
}

func (e *encoder) contentType(ct *model.ContentType) {
	e.raw(`"`)
	e.escape(string(ct.MediaType))
	for p := range ct.Params.All() {
		e.raw(";")
		e.escape(p.Key)
		e.raw("=")
		e.escape(p.Value)
	}
	e.raw(`"`)
}
