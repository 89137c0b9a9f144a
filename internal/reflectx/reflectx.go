// Package reflectx holds the reflection helpers shared by struct bindings and
// the encode/export families: field matching, lenient assignment of decoded
// values into Go values, and normalization of Go values into the generic
// value model.
package reflectx

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// FindField matches by: 1) shape:"name" tag, 2) case-insensitive, 3) kebab or snake case.
func FindField(goType reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < goType.NumField(); i++ {
		field := goType.Field(i)
		if !field.IsExported() {
			continue
		}

		if tag := field.Tag.Get("shape"); tag != "" {
			if tag == "-" {
				continue
			}
			if tag == name {
				return field, true
			}
			continue
		}

		if strings.EqualFold(field.Name, name) {
			return field, true
		}

		if toKebabCase(field.Name) == name || toSnakeCase(field.Name) == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func toKebabCase(s string) string {
	return splitCamel(s, '-')
}

func toSnakeCase(s string) string {
	return splitCamel(s, '_')
}

func splitCamel(s string, sep byte) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteByte(sep)
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Assign stores v into dst, converting between the generic value model
// ([]any, map[string]any, int64, float64, ...) and the concrete Go type of dst.
func Assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	switch dst.Kind() {
	case reflect.Ptr:
		p := reflect.New(dst.Type().Elem())
		if err := Assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil

	case reflect.Slice:
		if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
			break
		}
		out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			if err := Assign(out.Index(i), src.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil

	case reflect.Array:
		if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
			break
		}
		if src.Len() != dst.Len() {
			return fmt.Errorf("cannot assign %d elements to %s", src.Len(), dst.Type())
		}
		for i := 0; i < src.Len(); i++ {
			if err := Assign(dst.Index(i), src.Index(i).Interface()); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil

	case reflect.Map:
		if src.Kind() != reflect.Map {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(dst.Type().Key()).Elem()
			if err := Assign(k, iter.Key().Interface()); err != nil {
				return err
			}
			val := reflect.New(dst.Type().Elem()).Elem()
			if err := Assign(val, iter.Value().Interface()); err != nil {
				return fmt.Errorf(".%v: %w", iter.Key().Interface(), err)
			}
			out.SetMapIndex(k, val)
		}
		dst.Set(out)
		return nil
	}

	if convertible(src, dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

// convertible limits reflect conversions to same-family kinds, so that an
// integer never silently becomes a one-rune string.
func convertible(src reflect.Value, to reflect.Type) bool {
	if !src.Type().ConvertibleTo(to) {
		return false
	}
	from := src.Kind()
	switch {
	case isInt(from) && isInt(to.Kind()):
		return true
	case isFloat(from) && isFloat(to.Kind()):
		return true
	case isInt(from) && isFloat(to.Kind()):
		return true
	case from == reflect.String && to.Kind() == reflect.String:
		return true
	case from == reflect.Bool && to.Kind() == reflect.Bool:
		return true
	}
	return false
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// Deref follows pointers. A nil pointer (or nil interface) reports ok=false.
func Deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// Int normalizes any Go integer to int64. Unsigned values above
// math.MaxInt64 are rejected.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// Float normalizes Go floats and integers to float64.
func Float(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	if n, ok := Int(v); ok {
		return float64(n), true
	}
	return 0, false
}

// String accepts string and named string types.
func String(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// Bool accepts bool and named bool types.
func Bool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

// Seq exposes any slice or array as []any. Byte slices are not sequences.
func Seq(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Entry is one key/value pair of a map value.
type Entry struct {
	Key   any
	Value any
}

// Entries exposes any map as a slice of entries ordered by the key's string form.
func Entries(v any) ([]Entry, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([]Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, Entry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i].Key) < fmt.Sprint(out[j].Key)
	})
	return out, true
}
