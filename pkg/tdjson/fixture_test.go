package tdjson

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wot-td/wot-go/pkg/model"
)

func ptr[T any](v T) *T { return &v }

// minimalThing returns a Thing with a single nosec definition.
func minimalThing(t *testing.T) *model.Thing {
	t.Helper()
	thing := &model.Thing{}
	require.NoError(t, thing.SecurityDefinitions.Add(&model.SecurityDefinition{
		Key:    "nosec_sc",
		Scheme: &model.SecurityScheme{Details: model.NoSecurity{}},
	}))
	return thing
}

func methodExtension(method string) *model.Extension {
	return &model.Extension{
		Name: "htv:methodName",
		Data: method,
		Renderer: model.ExtensionFunc(func(w io.Writer, name string, data any) {
			_, _ = io.WriteString(w, `,"`+name+`":"`+data.(string)+`"`)
		}),
	}
}

// lampThing builds a Thing that touches every part of the model.
func lampThing(t *testing.T) *model.Thing {
	t.Helper()
	thing := minimalThing(t)

	basic := &model.SecurityDefinition{
		Key: "basic_sc",
		Scheme: &model.SecurityScheme{
			Proxy:   &model.URI{Scheme: "https://", Value: "proxy.example.com"},
			Details: &model.BasicScheme{In: model.InHeader, Name: "Authorization"},
		},
	}
	require.NoError(t, basic.Scheme.Descriptions.Add(&model.MultiLang{Tag: "en", Value: "Basic auth"}))
	require.NoError(t, thing.SecurityDefinitions.Add(basic))

	require.NoError(t, thing.Context.Add(&model.ContextEntry{Value: "https://www.w3.org/2022/wot/discovery"}))
	require.NoError(t, thing.Context.Add(&model.ContextEntry{Key: "saref", Value: "https://w3id.org/saref#"}))
	require.NoError(t, model.AddTypes(&thing.Types, "saref:LightSwitch"))

	thing.ID = &model.URI{Scheme: "urn:", Value: "dev:ops:32473-WoTLamp-1234"}
	thing.DefaultLanguage = "en"
	require.NoError(t, thing.Titles.Add(&model.MultiLang{Tag: "en", Value: "Lamp Thing"}))
	require.NoError(t, thing.Titles.Add(&model.MultiLang{Tag: "de", Value: "Lampen-Ding"}))
	require.NoError(t, thing.Descriptions.Add(&model.MultiLang{Tag: "en", Value: "A lamp with a \"toggle\" action"}))

	status := &model.PropertyAffordance{
		Key:        "status",
		Observable: true,
		Schema: &model.DataSchema{
			Payload:  model.StringSchema{},
			ReadOnly: true,
		},
	}
	require.NoError(t, model.AddLiterals(&status.Schema.Enum, "on", "off"))
	require.NoError(t, status.Titles.Add(&model.MultiLang{Tag: "en", Value: "Status"}))
	statusForm := &model.Form{
		Href:        &model.URI{Value: "/status"},
		ContentType: &model.ContentType{MediaType: model.MediaTypeJSON},
	}
	require.NoError(t, statusForm.AddOp(model.OpReadProperty))
	require.NoError(t, statusForm.AddOp(model.OpObserveProperty))
	require.NoError(t, statusForm.ContentType.Params.Add(&model.MediaTypeParam{Key: "charset", Value: "utf-8"}))
	require.NoError(t, statusForm.Extensions.Add(methodExtension("GET")))
	require.NoError(t, status.Forms.Add(statusForm))
	require.NoError(t, thing.Properties.Add(status))

	brightness := &model.PropertyAffordance{
		Key: "brightness",
		Schema: &model.DataSchema{
			Payload: &model.IntegerSchema{Minimum: ptr[int64](0), Maximum: ptr[int64](100)},
			Unit:    "percent",
		},
	}
	require.NoError(t, brightness.Schema.Titles.Add(&model.MultiLang{Tag: "en", Value: "Brightness"}))
	bForm := &model.Form{Href: &model.URI{Value: "/brightness"}, ContentCoding: model.CodingGzip}
	require.NoError(t, bForm.AddOp(model.OpWriteProperty))
	require.NoError(t, bForm.Security.Add(basic))
	require.NoError(t, brightness.Forms.Add(bForm))
	require.NoError(t, thing.Properties.Add(brightness))

	toggle := &model.ActionAffordance{
		Key:   "toggle",
		Input: &model.DataSchema{Payload: &model.ObjectSchema{}},
		Output: &model.DataSchema{
			Payload: &model.ArraySchema{MinItems: ptr[uint32](1), MaxItems: ptr[uint32](2)},
		},
		Idempotent: true,
	}
	in := toggle.Input.Payload.(*model.ObjectSchema)
	require.NoError(t, in.Properties.Add(&model.SchemaEntry{
		Key:    "level",
		Schema: &model.DataSchema{Payload: &model.NumberSchema{Minimum: ptr(0.5), Maximum: ptr(99.5)}},
	}))
	require.NoError(t, model.AddLiterals(&in.Required, "level"))
	out := toggle.Output.Payload.(*model.ArraySchema)
	require.NoError(t, out.Items.Add(&model.DataSchema{Payload: model.BooleanSchema{}}))
	tForm := &model.Form{
		Href:     &model.URI{Value: "/toggle"},
		Response: &model.ExpectedResponse{ContentType: &model.ContentType{MediaType: model.MediaTypeText}},
	}
	require.NoError(t, tForm.AddOp(model.OpInvokeAction))
	require.NoError(t, model.AddLiterals(&tForm.Scopes, "lamp.write"))
	require.NoError(t, tForm.Extensions.Add(methodExtension("POST")))
	require.NoError(t, toggle.Forms.Add(tForm))
	require.NoError(t, toggle.URIVariables.Add(&model.SchemaEntry{
		Key:    "delay",
		Schema: &model.DataSchema{Payload: &model.IntegerSchema{}},
	}))
	require.NoError(t, thing.Actions.Add(toggle))

	overheat := &model.EventAffordance{
		Key: "overheating",
		Data: &model.DataSchema{
			Payload: model.StringSchema{},
			Const:   ptr("hot"),
			Format:  "text",
		},
	}
	oneOf := &model.DataSchema{}
	require.NoError(t, oneOf.OneOf.Add(&model.DataSchema{Payload: model.NullSchema{}}))
	require.NoError(t, oneOf.OneOf.Add(&model.DataSchema{Payload: model.StringSchema{}}))
	overheat.Cancellation = oneOf
	eForm := &model.Form{Href: &model.URI{Value: "/oh"}, Subprotocol: "longpoll"}
	require.NoError(t, eForm.AddOp(model.OpSubscribeEvent))
	require.NoError(t, overheat.Forms.Add(eForm))
	require.NoError(t, thing.Events.Add(overheat))

	require.NoError(t, thing.Links.Add(&model.Link{
		Href: &model.URI{Value: "https://example.com/manual"},
		Type: model.MediaTypeText,
		Rel:  "help",
	}))
	thing.Base = &model.URI{Scheme: "coap://", Value: "[fe80::1]/"}
	thing.Support = &model.URI{Scheme: "mailto:", Value: "support@example.com"}
	thing.Version = &model.VersionInfo{Instance: "1.0.0"}

	allForm := &model.Form{Href: &model.URI{Value: "/all"}}
	require.NoError(t, allForm.AddOp(model.OpReadAllProperties))
	require.NoError(t, thing.Forms.Add(allForm))

	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	thing.Created = &created
	thing.Modified = &created

	return thing
}
