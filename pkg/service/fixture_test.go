package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wot-td/wot-go/pkg/model"
)

func ptr[T any](v T) *T { return &v }

func addProperty(t *testing.T, thing *model.Thing, key string, schema *model.DataSchema, ops ...model.OperationType) {
	t.Helper()
	p := &model.PropertyAffordance{Key: key, Schema: schema}
	f := &model.Form{Href: &model.URI{Value: "/properties/" + key}}
	for _, op := range ops {
		require.NoError(t, f.AddOp(op))
	}
	require.NoError(t, p.Forms.Add(f))
	require.NoError(t, thing.Properties.Add(p))
}

// lampThing returns a small lamp with an on switch, a bounded brightness, a
// read-only status and a toggle action.
func lampThing(t *testing.T) *model.Thing {
	t.Helper()
	thing := &model.Thing{}
	require.NoError(t, thing.SecurityDefinitions.Add(&model.SecurityDefinition{
		Key:    "nosec_sc",
		Scheme: &model.SecurityScheme{Details: model.NoSecurity{}},
	}))
	require.NoError(t, thing.Titles.Add(&model.MultiLang{Value: "Lamp"}))

	addProperty(t, thing, "on", &model.DataSchema{Payload: model.BooleanSchema{}},
		model.OpReadProperty, model.OpWriteProperty)
	addProperty(t, thing, "brightness", &model.DataSchema{
		Payload: &model.IntegerSchema{Minimum: ptr[int64](0), Maximum: ptr[int64](100)},
	}, model.OpReadProperty, model.OpWriteProperty)

	status := &model.DataSchema{Payload: model.StringSchema{}, ReadOnly: true}
	require.NoError(t, model.AddLiterals(&status.Enum, "on", "off"))
	addProperty(t, thing, "status", status, model.OpReadProperty)

	toggle := &model.ActionAffordance{Key: "toggle"}
	f := &model.Form{Href: &model.URI{Value: "/actions/toggle"}}
	require.NoError(t, f.AddOp(model.OpInvokeAction))
	require.NoError(t, toggle.Forms.Add(f))
	require.NoError(t, thing.Actions.Add(toggle))

	return thing
}

// lampHost wires the lamp's toggle action to its on property.
func lampHost(t *testing.T) *Host {
	t.Helper()
	h := NewHost(lampThing(t))
	require.NoError(t, h.SetProperty("on", false))
	require.NoError(t, h.SetProperty("brightness", 50))
	h.HandleProperty("status", func(ctx context.Context) (any, error) {
		on, err := h.ReadProperty(ctx, "on")
		if err != nil {
			return nil, err
		}
		if on.(bool) {
			return "on", nil
		}
		return "off", nil
	}, nil)
	h.HandleAction("toggle", func(ctx context.Context, _ any) (any, error) {
		on, err := h.ReadProperty(ctx, "on")
		if err != nil {
			return nil, err
		}
		next := !on.(bool)
		return next, h.SetProperty("on", next)
	})
	return h
}
