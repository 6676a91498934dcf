// Package coerce converts loosely typed Go values to the native types of the
// protobuf scalar kinds. Conversions succeed only when they are lossless.
package coerce

import (
	"math"
	"reflect"
)

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func ToBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case nil:
		return false, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

func ToInt32(value any) (int32, bool) {
	v, ok := ToInt64(value)
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

func ToUint32(value any) (uint32, bool) {
	v, ok := ToUint64(value)
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

func ToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
		return 0, false
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
		return 0, false
	case float64:
		if v >= math.MinInt64 && v < math.MaxInt64 && v == math.Trunc(v) {
			return int64(v), true
		}
		return 0, false
	case float32:
		return ToInt64(float64(v))
	case nil:
		return 0, false
	}
	return reflectInt(value)
}

func ToUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case int, int8, int16, int32, int64:
		i, _ := ToInt64(v)
		if i >= 0 {
			return uint64(i), true
		}
		return 0, false
	case float64:
		if v >= 0 && v < math.MaxUint64 && v == math.Trunc(v) {
			return uint64(v), true
		}
		return 0, false
	case float32:
		return ToUint64(float64(v))
	case nil:
		return 0, false
	}
	return reflectUint(value)
}

func ToFloat32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || float64(float32(v)) == v {
			return float32(v), true
		}
		return 0, false
	}
	if f, ok := ToFloat64(value); ok && float64(float32(f)) == f {
		return float32(f), true
	}
	return 0, false
}

func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case nil:
		return 0, false
	}
	if i, ok := ToInt64(value); ok && i >= -(1<<53) && i <= 1<<53 {
		return float64(i), true
	}
	if u, ok := ToUint64(value); ok && u <= 1<<53 {
		return float64(u), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// ToString accepts strings and named string types.
func ToString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case nil:
		return "", false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// ToBytes accepts byte slices and strings.
func ToBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), true
	}
	return nil, false
}

// reflectInt handles named integer types such as enums declared as int32.
func reflectInt(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), true
		}
	case reflect.Float32, reflect.Float64:
		return ToInt64(rv.Float())
	}
	return 0, false
}

func reflectUint(value any) (uint64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := rv.Int(); i >= 0 {
			return uint64(i), true
		}
	case reflect.Float32, reflect.Float64:
		return ToUint64(rv.Float())
	}
	return 0, false
}
