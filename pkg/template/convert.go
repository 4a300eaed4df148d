package template

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ConvertError reports a host value FromAny cannot represent.
type ConvertError struct {
	Path string
	Type string
}

func (e *ConvertError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cannot convert value of type %s", e.Type)
	}
	return fmt.Sprintf("cannot convert value of type %s at %s", e.Type, e.Path)
}

// FromAny converts decoded YAML or JSON data into a Value tree. Maps become
// Map, slices and arrays become List, integers become Int and floats become
// Float. Values and Formattables pass through; fmt.Stringers become String.
func FromAny(v any) (Value, error) {
	return fromAny(v, "")
}

func fromAny(v any, path string) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return v, nil
	case Formattable:
		return Fmt(v), nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Fmt(Int(v)), nil
	case int8:
		return Fmt(Int(v)), nil
	case int16:
		return Fmt(Int(v)), nil
	case int32:
		return Fmt(Int(v)), nil
	case int64:
		return Fmt(Int(v)), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return Fmt(Int(v)), nil
	case uint16:
		return Fmt(Int(v)), nil
	case uint32:
		return Fmt(Int(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return Fmt(Float(v)), nil
	case float64:
		return Fmt(Float(v)), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Fmt(Int(i)), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, &ConvertError{Path: path, Type: "json.Number"}
		}
		return Fmt(Float(f)), nil
	case map[string]any:
		m := make(Map, len(v))
		for k, child := range v {
			cv, err := fromAny(child, join(path, k))
			if err != nil {
				return nil, err
			}
			m[k] = cv
		}
		return m, nil
	case []any:
		l := make(List, len(v))
		for i, child := range v {
			cv, err := fromAny(child, join(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			l[i] = cv
		}
		return l, nil
	case fmt.Stringer:
		return String(v.String()), nil
	}
	return fromReflect(reflect.ValueOf(v), path)
}

func fromReflect(rv reflect.Value, path string) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Nil{}, nil
		}
		return fromAny(rv.Elem().Interface(), path)
	case reflect.Map:
		m := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			cv, err := fromAny(iter.Value().Interface(), join(path, k))
			if err != nil {
				return nil, err
			}
			m[k] = cv
		}
		return m, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List{}, nil
		}
		l := make(List, rv.Len())
		for i := range l {
			cv, err := fromAny(rv.Index(i).Interface(), join(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			l[i] = cv
		}
		return l, nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Fmt(Int(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Fmt(Float(rv.Float())), nil
	}
	return nil, &ConvertError{Path: path, Type: rv.Type().String()}
}

// fromUint keeps integers that fit in Int. Larger ones become Float, as
// oversized JSON numbers do.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Fmt(Float(u))
	}
	return Fmt(Int(u))
}

func join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}
