package services

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

func toInt(loc, name string, v any) (int, error) {
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, entities.NewInvalidOptionError(loc, name, v, err)
	}
	return i, nil
}

func toFloat(loc, name string, v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, entities.NewInvalidOptionError(loc, name, v, err)
	}
	return f, nil
}

func toBool(loc, name string, v any) (bool, error) {
	if v == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, entities.NewInvalidOptionError(loc, name, v, err)
	}
	return b, nil
}

func toString(loc, name string, v any) (string, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", entities.NewInvalidOptionError(loc, name, v, err)
	}
	return s, nil
}

// toBag accepts a Bag, a string-keyed map or nil.
func toBag(loc, name string, v any) (entities.Bag, error) {
	switch b := v.(type) {
	case nil:
		return entities.NewBag(), nil
	case entities.Bag:
		return b, nil
	case map[string]any:
		return entities.BagFrom(b), nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return entities.Bag{}, entities.NewInvalidOptionError(loc, name, v, err)
	}
	return entities.BagFrom(m), nil
}

// toSlice returns the elements of a slice or array value.
func toSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

func toStrings(loc, name string, v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{s}, nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, entities.NewInvalidOptionError(loc, name, v, fmt.Errorf("expected a list of strings: %w", err))
	}
	return out, nil
}
