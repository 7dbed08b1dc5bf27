package service

import (
	"fmt"
	"math"

	"github.com/wot-td/wot-go/pkg/model"
)

// coerceValue checks v against schema and returns it in canonical form:
// integers as int64, numbers as float64. Values decoded from CBOR or JSON
// arrive with varying Go types, so both encodings are accepted.
// A nil or payload-less schema accepts anything.
func coerceValue(schema *model.DataSchema, v any) (any, error) {
	if schema == nil || schema.Payload == nil {
		return v, nil
	}

	switch p := schema.Payload.(type) {
	case model.BooleanSchema:
		if _, ok := v.(bool); !ok {
			return nil, fmt.Errorf("%w: want boolean, got %T", ErrInvalidInput, v)
		}
		return v, nil

	case model.StringSchema:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want string, got %T", ErrInvalidInput, v)
		}
		if schema.Enum.Len() > 0 && model.FindLiteral(&schema.Enum, s) == nil {
			return nil, fmt.Errorf("%w: %q is not an allowed value", ErrInvalidInput, s)
		}
		return s, nil

	case model.NullSchema:
		if v != nil {
			return nil, fmt.Errorf("%w: want null, got %T", ErrInvalidInput, v)
		}
		return nil, nil

	case *model.IntegerSchema:
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: want integer, got %v", ErrInvalidInput, v)
		}
		if p.Minimum != nil && n < *p.Minimum {
			return nil, fmt.Errorf("%w: %d below minimum %d", ErrInvalidInput, n, *p.Minimum)
		}
		if p.Maximum != nil && n > *p.Maximum {
			return nil, fmt.Errorf("%w: %d above maximum %d", ErrInvalidInput, n, *p.Maximum)
		}
		return n, nil

	case *model.NumberSchema:
		f, ok := toFloat64(v)
		if !ok {
			return nil, fmt.Errorf("%w: want number, got %T", ErrInvalidInput, v)
		}
		if p.Minimum != nil && f < *p.Minimum {
			return nil, fmt.Errorf("%w: %g below minimum %g", ErrInvalidInput, f, *p.Minimum)
		}
		if p.Maximum != nil && f > *p.Maximum {
			return nil, fmt.Errorf("%w: %g above maximum %g", ErrInvalidInput, f, *p.Maximum)
		}
		return f, nil

	case *model.ObjectSchema:
		switch v.(type) {
		case map[string]any, map[any]any:
			return v, nil
		}
		return nil, fmt.Errorf("%w: want object, got %T", ErrInvalidInput, v)

	case *model.ArraySchema:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: want array, got %T", ErrInvalidInput, v)
		}
		if p.MinItems != nil && uint32(len(items)) < *p.MinItems {
			return nil, fmt.Errorf("%w: fewer than %d items", ErrInvalidInput, *p.MinItems)
		}
		if p.MaxItems != nil && uint32(len(items)) > *p.MaxItems {
			return nil, fmt.Errorf("%w: more than %d items", ErrInvalidInput, *p.MaxItems)
		}
		return items, nil
	}
	return v, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
