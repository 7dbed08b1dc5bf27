package model

import (
	"io"

	"github.com/wot-td/wot-go/pkg/collection"
)

// OperationType is a form operation.
type OperationType uint8

const (
	OpReadProperty OperationType = iota
	OpWriteProperty
	OpObserveProperty
	OpUnobserveProperty
	OpInvokeAction
	OpSubscribeEvent
	OpUnsubscribeEvent
	OpReadAllProperties
	OpWriteAllProperties
	OpReadMultipleProperties
	OpWriteMultipleProperties
)

var opNames = [...]string{
	OpReadProperty:            "readproperty",
	OpWriteProperty:           "writeproperty",
	OpObserveProperty:         "observeproperty",
	OpUnobserveProperty:       "unobserveproperty",
	OpInvokeAction:            "invokeaction",
	OpSubscribeEvent:          "subscribeevent",
	OpUnsubscribeEvent:        "unsubscribeevent",
	OpReadAllProperties:       "readallproperties",
	OpWriteAllProperties:      "writeallproperties",
	OpReadMultipleProperties:  "readmultipleproperties",
	OpWriteMultipleProperties: "writemultipleproperties",
}

// String returns the operation name as used in the "op" field.
func (o OperationType) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// ParseOperationType maps an operation name to its value.
func ParseOperationType(s string) (OperationType, bool) {
	for i, name := range opNames {
		if name == s {
			return OperationType(i), true
		}
	}
	return 0, false
}

// MediaType is the media type part of a content type.
type MediaType string

const (
	MediaTypeJSON   MediaType = "application/json"
	MediaTypeText   MediaType = "text/plain"
	MediaTypeJSONLD MediaType = "application/ld+json"
	MediaTypeCSV    MediaType = "text/csv"
)

// ContentCoding is a content encoding. The empty value means none.
type ContentCoding string

const (
	CodingNone     ContentCoding = ""
	CodingGzip     ContentCoding = "gzip"
	CodingCompress ContentCoding = "compress"
	CodingDeflate  ContentCoding = "deflate"
	CodingIdentity ContentCoding = "identity"
	CodingBrotli   ContentCoding = "br"
)

// MediaTypeParam is a content type parameter such as charset=utf-8.
type MediaTypeParam struct {
	Key   string
	Value string
}

// ContentType is a media type with parameters.
type ContentType struct {
	MediaType MediaType
	Params    collection.List[MediaTypeParam]
}

// ExpectedResponse describes the response a form produces.
type ExpectedResponse struct {
	ContentType *ContentType
}

// FormOp is one entry of a form's operation list.
type FormOp struct {
	Type OperationType
}

// Form binds operations on an affordance to a protocol endpoint.
type Form struct {
	Ops           collection.List[FormOp]
	Href          *URI
	ContentType   *ContentType
	ContentCoding ContentCoding
	Subprotocol   string

	// Security refers to definitions by key; the definitions themselves
	// are listed on the Thing.
	Security   collection.List[SecurityDefinition]
	Scopes     LiteralList
	Response   *ExpectedResponse
	Extensions collection.List[Extension]
}

// AddOp appends an operation.
func (f *Form) AddOp(op OperationType) error {
	return f.Ops.Add(&FormOp{Type: op})
}

// HasOp reports whether the form lists op.
func (f *Form) HasOp(op OperationType) bool {
	return f.Ops.FindBy(func(o *FormOp) string { return o.Type.String() }, op.String()) != nil
}

// FormList holds forms in insertion order.
type FormList = collection.List[Form]

// ExtensionRenderer writes additional form fields. Each field must start
// with a comma, e.g. `,"htv:methodName":"GET"`, since the form always has
// a preceding field. Write errors are the renderer's to ignore; the
// serializer reports sink failures itself.
type ExtensionRenderer interface {
	RenderExtension(w io.Writer, name string, data any)
}

// ExtensionFunc adapts a function to ExtensionRenderer.
type ExtensionFunc func(w io.Writer, name string, data any)

// RenderExtension calls f.
func (f ExtensionFunc) RenderExtension(w io.Writer, name string, data any) {
	f(w, name, data)
}

// Extension attaches protocol specific fields to a form.
type Extension struct {
	Name     string
	Data     any
	Renderer ExtensionRenderer
}

func extensionName(e *Extension) string { return e.Name }

// FindExtension returns the form extension named name, or nil.
func (f *Form) FindExtension(name string) *Extension {
	return f.Extensions.FindBy(extensionName, name)
}
