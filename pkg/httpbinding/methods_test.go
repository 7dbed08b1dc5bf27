package httpbinding

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wot-td/wot-go/pkg/model"
	"github.com/wot-td/wot-go/pkg/tdjson"
)

func TestMethodFor(t *testing.T) {
	tests := []struct {
		op   model.OperationType
		want string
	}{
		{model.OpReadProperty, http.MethodGet},
		{model.OpObserveProperty, http.MethodGet},
		{model.OpReadAllProperties, http.MethodGet},
		{model.OpReadMultipleProperties, http.MethodGet},
		{model.OpSubscribeEvent, http.MethodGet},
		{model.OpWriteProperty, http.MethodPut},
		{model.OpWriteAllProperties, http.MethodPut},
		{model.OpWriteMultipleProperties, http.MethodPut},
		{model.OpInvokeAction, http.MethodPost},
		{model.OpUnobserveProperty, http.MethodGet},
		{model.OpUnsubscribeEvent, http.MethodGet},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, MethodFor(tt.op))
		})
	}
}

func TestFormMethod(t *testing.T) {
	form := func(ops ...model.OperationType) *model.Form {
		f := &model.Form{Href: &model.URI{Value: "/x"}}
		for _, op := range ops {
			require.NoError(t, f.AddOp(op))
		}
		return f
	}

	assert.Equal(t, "", FormMethod(form()))
	assert.Equal(t, http.MethodGet, FormMethod(form(model.OpReadProperty, model.OpObserveProperty)))
	assert.Equal(t, http.MethodGet, FormMethod(form(model.OpObserveProperty, model.OpUnobserveProperty)))
	assert.Equal(t, http.MethodGet, FormMethod(form(model.OpSubscribeEvent, model.OpUnsubscribeEvent)))
	assert.Equal(t, "", FormMethod(form(model.OpReadProperty, model.OpWriteProperty)))
	assert.Equal(t, http.MethodPost, FormMethod(form(model.OpInvokeAction)))
}

func TestApplyDefaultMethods(t *testing.T) {
	thing := testThing(t)

	n, err := ApplyDefaultMethods(thing)
	require.NoError(t, err)
	// brightness (read+write) is mixed and stays unannotated.
	assert.Equal(t, 3, n)
	require.NotNil(t, thing.FindContext(HTVContextKey))

	doc, err := tdjson.Marshal(thing)
	require.NoError(t, err)
	s := string(doc)
	assert.Contains(t, s, `{"htv":"http://www.w3.org/2011/http#"}`)
	assert.Contains(t, s, `"href":"/properties/status","htv:methodName":"GET"`)
	assert.Contains(t, s, `"href":"/actions/toggle","htv:methodName":"POST"`)
	assert.Contains(t, s, `"href":"/properties/brightness"}`)

	// A second pass finds every form annotated already.
	n, err = ApplyDefaultMethods(thing)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	again, err := tdjson.Marshal(thing)
	require.NoError(t, err)
	assert.Equal(t, s, string(again))
	assert.Equal(t, 1, strings.Count(s, `"htv"`))
}

func TestMethodExtensionIgnoresBadData(t *testing.T) {
	var sb strings.Builder
	ext := MethodExtension("")
	ext.Renderer.RenderExtension(&sb, ext.Name, ext.Data)
	assert.Empty(t, sb.String())

	ext = MethodExtension(http.MethodPut)
	ext.Renderer.RenderExtension(&sb, ext.Name, ext.Data)
	assert.Equal(t, `,"htv:methodName":"PUT"`, sb.String())
}
