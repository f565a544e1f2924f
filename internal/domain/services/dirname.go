package services

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/reglet-dev/qmcchain/internal/domain/entities"
)

// DirName converts a sweep value into a directory-name token.
//
//	"hcp"          → "hcp"
//	3.5            → "3.5"
//	2.0            → "2.0"
//	2              → "2"
//	[]int{1, 2, 3} → "1_2_3"
//
// Floats are written in positional notation and keep a fractional digit
// when whole, so they never collide with the matching integer. Nested
// sequences are flattened in order. Empty sequences, NaN, infinities and any
// other value type yield an UnnamableValueError.
func DirName(v any) (string, error) {
	return dirName("dir_name", v)
}

func dirName(location string, v any) (string, error) {
	if v == nil {
		return "", entities.NewUnnamableValueError(location, v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", entities.NewUnnamableValueError(location, v)
		}
		s := strconv.FormatFloat(f, 'f', -1, rv.Type().Bits())
		if f == math.Trunc(f) {
			s += ".0"
		}
		return s, nil
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return "", entities.NewUnnamableValueError(location, v)
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			s, err := dirName(location, rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, "_"), nil
	default:
		return "", entities.NewUnnamableValueError(location, v)
	}
}

// ecutName names a cutoff. Cutoffs arrive as float64 whatever the request
// wrote, so whole values drop the fractional digit: 100 → "100", 112.5 → "112.5".
func ecutName(location string, ecut float64) (string, error) {
	if math.IsNaN(ecut) || math.IsInf(ecut, 0) {
		return "", entities.NewUnnamableValueError(location, ecut)
	}
	return strconv.FormatFloat(ecut, 'f', -1, 64), nil
}
