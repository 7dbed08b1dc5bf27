package tdjson

import (
	"github.com/wot-td/wot-go/pkg/collection"
	"github.com/wot-td/wot-go/pkg/model"
)

func (e *encoder) securityKeys(l *collection.List[model.SecurityDefinition]) {
	arr := e.array()
	for d := range l.All() {
		arr.elem()
		e.str(d.Key)
	}
	arr.closeArray()
}

func (e *encoder) securityScheme(s *model.SecurityScheme) {
	obj := e.object()
	if !s.Types.Empty() {
		obj.key("@type")
		e.types(&s.Types)
	}
	obj.key("scheme")
	e.str(s.Name())
	e.multiLang(obj, "descriptions", "description", &s.Descriptions)
	if s.Proxy != nil {
		obj.key("proxy")
		e.uri(s.Proxy)
	}

	switch d := s.Details.(type) {
	case *model.BasicScheme:
		obj.key("in")
		e.str(d.In.String())
		e.optString(obj, "name", d.Name)
	case *model.DigestScheme:
		obj.key("qop")
		e.str(d.QoP.String())
		obj.key("in")
		e.str(d.In.String())
		e.optString(obj, "name", d.Name)
	case *model.APIKeyScheme:
		obj.key("in")
		e.str(d.In.String())
		e.optString(obj, "name", d.Name)
	case *model.BearerScheme:
		e.optURI(obj, "authorization", d.Authorization)
		e.optString(obj, "alg", d.Alg)
		e.optString(obj, "format", d.Format)
		if d.In != model.InDefault {
			obj.key("in")
			e.str(d.In.String())
		}
		e.optString(obj, "name", d.Name)
	case *model.PSKScheme:
		e.optString(obj, "identity", d.Identity)
	case *model.OAuth2Scheme:
		obj.key("flow")
		e.str(d.Flow)
		e.optURI(obj, "authorization", d.Authorization)
		e.optURI(obj, "token", d.Token)
		e.optURI(obj, "refresh", d.Refresh)
		if !d.Scopes.Empty() {
			obj.key("scopes")
			e.literals(&d.Scopes)
		}
	}

	obj.closeObject()
}

func (e *encoder) optString(obj *scope, key, v string) {
	if v == "" {
		return
	}
	obj.key(key)
	e.str(v)
}

func (e *encoder) optURI(obj *scope, key string, u *model.URI) {
	if u == nil {
		return
	}
	obj.key(key)
	e.uri(u)
}
