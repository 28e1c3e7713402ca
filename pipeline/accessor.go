// Package pipeline implements the filter, sort and paginate stages of a
// data table as pure functions over an item slice, plus three interchangeable
// execution strategies (client, server, virtual) sharing one contract.
package pipeline

import (
	"reflect"
	"strings"
)

// Accessor resolves a string key to a value on an item. Keys may use dotted
// paths for nested access.
type Accessor[T any] func(item T, key string) any

// MapAccessor resolves dotted-path keys on map items.
func MapAccessor(item map[string]any, key string) any {
	var current any = item
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// FieldAccessor resolves dotted-path keys on struct items via reflection.
// Field names match case-insensitively; unexported fields and unknown paths
// resolve to nil. Pointers are followed, and nested maps keyed by string are
// traversed like struct fields.
func FieldAccessor[T any]() Accessor[T] {
	return func(item T, key string) any {
		var current any = item
		for _, part := range strings.Split(key, ".") {
			current = fieldValue(current, part)
			if current == nil {
				return nil
			}
		}
		return current
	}
}

func fieldValue(item any, name string) any {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if strings.EqualFold(f.Name, name) {
				return v.Field(i).Interface()
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			mv := v.MapIndex(reflect.ValueOf(name))
			if mv.IsValid() {
				return mv.Interface()
			}
		}
	}
	return nil
}
