package model

import "github.com/wot-td/wot-go/pkg/collection"

// DefaultContext is the Thing Description context every document starts with.
const DefaultContext = "https://www.w3.org/2019/wot/td/v1"

// ContextEntry is a JSON-LD context entry. An entry without a key renders
// as a bare string, an entry with a key as a one-key object.
type ContextEntry struct {
	Key   string
	Value string
}

// MultiLang is a text value tagged with a language.
type MultiLang struct {
	Tag   string
	Value string
}

// TypeTag is a semantic @type annotation.
type TypeTag struct {
	Value string
}

// Literal is a single string value in a list, used for enumerations,
// required property names and OAuth2 scopes.
type Literal struct {
	Value string
}

// MultiLangList holds language tagged texts such as titles or descriptions.
type MultiLangList = collection.List[MultiLang]

// TypeList holds @type annotations.
type TypeList = collection.List[TypeTag]

// LiteralList holds plain string values.
type LiteralList = collection.List[Literal]

func langTag(m *MultiLang) string       { return m.Tag }
func contextKey(c *ContextEntry) string { return c.Key }
func typeValue(t *TypeTag) string       { return t.Value }
func literalValue(l *Literal) string    { return l.Value }

// FindLang returns the entry tagged with tag, or nil.
func FindLang(l *MultiLangList, tag string) *MultiLang {
	return l.FindBy(langTag, tag)
}

// FindType returns the type annotation with the given value, or nil.
func FindType(l *TypeList, value string) *TypeTag {
	return l.FindBy(typeValue, value)
}

// FindLiteral returns the literal with the given value, or nil.
func FindLiteral(l *LiteralList, value string) *Literal {
	return l.FindBy(literalValue, value)
}

// AddLiterals appends one Literal per value.
func AddLiterals(l *LiteralList, values ...string) error {
	for _, v := range values {
		if err := l.Add(&Literal{Value: v}); err != nil {
			return err
		}
	}
	return nil
}

// AddTypes appends one TypeTag per value.
func AddTypes(l *TypeList, values ...string) error {
	for _, v := range values {
		if err := l.Add(&TypeTag{Value: v}); err != nil {
			return err
		}
	}
	return nil
}
