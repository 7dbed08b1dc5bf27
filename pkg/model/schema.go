package model

import "github.com/wot-td/wot-go/pkg/collection"

// JSONType is the "type" value of a data schema.
type JSONType uint8

const (
	JSONTypeNone JSONType = iota
	JSONTypeObject
	JSONTypeArray
	JSONTypeNumber
	JSONTypeInteger
	JSONTypeString
	JSONTypeBoolean
	JSONTypeNull
)

// String returns the JSON type name, or "" for JSONTypeNone.
func (t JSONType) String() string {
	switch t {
	case JSONTypeObject:
		return "object"
	case JSONTypeArray:
		return "array"
	case JSONTypeNumber:
		return "number"
	case JSONTypeInteger:
		return "integer"
	case JSONTypeString:
		return "string"
	case JSONTypeBoolean:
		return "boolean"
	case JSONTypeNull:
		return "null"
	default:
		return ""
	}
}

// DataSchema describes a data value. It is recursive through OneOf and
// the object and array payloads.
type DataSchema struct {
	Types        TypeList
	Titles       MultiLangList
	Descriptions MultiLangList

	// Payload selects the JSON type. Nil means the schema has no type.
	Payload SchemaPayload

	Const *string
	Unit  string
	OneOf SchemaList
	Enum  LiteralList

	ReadOnly  bool
	WriteOnly bool
	Format    string
}

// Type returns the JSON type implied by the payload.
func (s *DataSchema) Type() JSONType {
	if s == nil || s.Payload == nil {
		return JSONTypeNone
	}
	return s.Payload.JSONType()
}

// SchemaList is an ordered list of schemas.
type SchemaList = collection.List[DataSchema]

// SchemaEntry is a named schema in a map such as object properties or
// URI variables.
type SchemaEntry struct {
	Key    string
	Schema *DataSchema
}

// SchemaMap holds named schemas in insertion order.
type SchemaMap = collection.List[SchemaEntry]

func schemaKey(e *SchemaEntry) string { return e.Key }

// FindSchema returns the entry named key, or nil.
func FindSchema(m *SchemaMap, key string) *SchemaEntry {
	return m.FindBy(schemaKey, key)
}

// SchemaPayload is implemented by every data schema variant.
type SchemaPayload interface {
	JSONType() JSONType
}

// ObjectSchema is the payload of an object schema.
type ObjectSchema struct {
	Properties SchemaMap
	Required   LiteralList
}

// ArraySchema is the payload of an array schema.
type ArraySchema struct {
	Items    SchemaList
	MinItems *uint32
	MaxItems *uint32
}

// NumberSchema is the payload of a number schema.
type NumberSchema struct {
	Minimum *float64
	Maximum *float64
}

// IntegerSchema is the payload of an integer schema.
type IntegerSchema struct {
	Minimum *int64
	Maximum *int64
}

// StringSchema is the payload of a string schema.
type StringSchema struct{}

// BooleanSchema is the payload of a boolean schema.
type BooleanSchema struct{}

// NullSchema is the payload of a null schema.
type NullSchema struct{}

func (*ObjectSchema) JSONType() JSONType  { return JSONTypeObject }
func (*ArraySchema) JSONType() JSONType   { return JSONTypeArray }
func (*NumberSchema) JSONType() JSONType  { return JSONTypeNumber }
func (*IntegerSchema) JSONType() JSONType { return JSONTypeInteger }
func (StringSchema) JSONType() JSONType   { return JSONTypeString }
func (BooleanSchema) JSONType() JSONType  { return JSONTypeBoolean }
func (NullSchema) JSONType() JSONType     { return JSONTypeNull }
