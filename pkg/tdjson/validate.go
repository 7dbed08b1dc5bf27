package tdjson

import (
	"errors"
	"fmt"

	"github.com/wot-td/wot-go/pkg/model"
)

// ErrDocumentInvalid indicates the Thing lacks a field the document
// requires. Nothing is written when it is returned.
var ErrDocumentInvalid = errors.New("document invalid")

// MaxSchemaDepth bounds data schema nesting.
const MaxSchemaDepth = 32

// Validate checks that thing can be rendered as a complete document.
func Validate(thing *model.Thing) error {
	if thing == nil {
		return fmt.Errorf("%w: nil thing", ErrDocumentInvalid)
	}
	if thing.SecurityDefinitions.Empty() {
		return fmt.Errorf("%w: no security definitions", ErrDocumentInvalid)
	}
	for d := range thing.SecurityDefinitions.All() {
		if d.Key == "" || d.Scheme == nil {
			return fmt.Errorf("%w: incomplete security definition %q", ErrDocumentInvalid, d.Key)
		}
	}
	for l := range thing.Links.All() {
		if l.Href == nil {
			return fmt.Errorf("%w: link without href", ErrDocumentInvalid)
		}
	}
	if err := validateForms("thing", &thing.Forms); err != nil {
		return err
	}

	for p := range thing.Properties.All() {
		if err := validateAffordance("property "+p.Key, &p.InteractionAffordance, p.Schema); err != nil {
			return err
		}
	}
	for a := range thing.Actions.All() {
		if err := validateAffordance("action "+a.Key, &a.InteractionAffordance, a.Input, a.Output); err != nil {
			return err
		}
	}
	for ev := range thing.Events.All() {
		if err := validateAffordance("event "+ev.Key, &ev.InteractionAffordance, ev.Subscription, ev.Data, ev.Cancellation); err != nil {
			return err
		}
	}
	return nil
}

func validateAffordance(where string, a *model.InteractionAffordance, schemas ...*model.DataSchema) error {
	if err := validateForms(where, &a.Forms); err != nil {
		return err
	}
	if err := validateSchemaMap(where, &a.URIVariables, 0); err != nil {
		return err
	}
	for _, s := range schemas {
		if s == nil {
			continue
		}
		if err := validateSchema(where, s, 0); err != nil {
			return err
		}
	}
	return nil
}

func validateForms(where string, l *model.FormList) error {
	for f := range l.All() {
		if f.Href == nil {
			return fmt.Errorf("%w: %s: form without href", ErrDocumentInvalid, where)
		}
	}
	return nil
}

func validateSchema(where string, s *model.DataSchema, depth int) error {
	if depth >= MaxSchemaDepth {
		return fmt.Errorf("%w: %s: schema nested deeper than %d", ErrDocumentInvalid, where, MaxSchemaDepth)
	}
	for sub := range s.OneOf.All() {
		if err := validateSchema(where, sub, depth+1); err != nil {
			return err
		}
	}
	switch p := s.Payload.(type) {
	case *model.ObjectSchema:
		return validateSchemaMap(where, &p.Properties, depth+1)
	case *model.ArraySchema:
		for item := range p.Items.All() {
			if err := validateSchema(where, item, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSchemaMap(where string, m *model.SchemaMap, depth int) error {
	for entry := range m.All() {
		if entry.Schema == nil {
			return fmt.Errorf("%w: %s: schema %q is nil", ErrDocumentInvalid, where, entry.Key)
		}
		if err := validateSchema(where, entry.Schema, depth); err != nil {
			return err
		}
	}
	return nil
}
