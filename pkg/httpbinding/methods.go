package httpbinding

import (
	"io"
	"net/http"

	"github.com/wot-td/wot-go/pkg/model"
)

// HTTP vocabulary used in forms.
const (
	MethodExtensionName = "htv:methodName"
	HTVContextKey       = "htv"
	HTVNamespace        = "http://www.w3.org/2011/http#"
)

// MethodFor returns the HTTP method that performs op. Writes use PUT,
// invocations POST, and every other operation, including unobserve and
// unsubscribe, GET.
func MethodFor(op model.OperationType) string {
	switch op {
	case model.OpWriteProperty, model.OpWriteAllProperties, model.OpWriteMultipleProperties:
		return http.MethodPut
	case model.OpInvokeAction:
		return http.MethodPost
	default:
		return http.MethodGet
	}
}

// FormMethod returns the single method shared by all operations of f, or
// "" when the form has no operations or its operations need different
// methods.
func FormMethod(f *model.Form) string {
	method := ""
	for op := range f.Ops.All() {
		m := MethodFor(op.Type)
		if method != "" && m != method {
			return ""
		}
		method = m
	}
	return method
}

// MethodExtension returns a form extension rendering
// "htv:methodName":"<method>".
func MethodExtension(method string) *model.Extension {
	return &model.Extension{
		Name:     MethodExtensionName,
		Data:     method,
		Renderer: model.ExtensionFunc(renderMethod),
	}
}

func renderMethod(w io.Writer, name string, data any) {
	method, ok := data.(string)
	if !ok || method == "" {
		return
	}
	_, _ = io.WriteString(w, `,"`+name+`":"`+method+`"`)
}

// ApplyDefaultMethods annotates every form whose operations agree on one
// method with an htv:methodName extension, skipping forms that already carry
// one, and adds the htv context entry when anything was annotated. It returns
// the number of forms annotated.
func ApplyDefaultMethods(thing *model.Thing) (int, error) {
	n := 0
	annotate := func(forms *model.FormList) error {
		for f := range forms.All() {
			if f.FindExtension(MethodExtensionName) != nil {
				continue
			}
			method := FormMethod(f)
			if method == "" {
				continue
			}
			if err := f.Extensions.Add(MethodExtension(method)); err != nil {
				return err
			}
			n++
		}
		return nil
	}

	if err := annotate(&thing.Forms); err != nil {
		return n, err
	}
	for p := range thing.Properties.All() {
		if err := annotate(&p.Forms); err != nil {
			return n, err
		}
	}
	for a := range thing.Actions.All() {
		if err := annotate(&a.Forms); err != nil {
			return n, err
		}
	}
	for e := range thing.Events.All() {
		if err := annotate(&e.Forms); err != nil {
			return n, err
		}
	}

	if n > 0 && thing.FindContext(HTVContextKey) == nil {
		if err := thing.Context.Add(&model.ContextEntry{Key: HTVContextKey, Value: HTVNamespace}); err != nil {
			return n, err
		}
	}
	return n, nil
}
