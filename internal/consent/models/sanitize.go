package models

import (
	"reflect"
	"strings"
)

// sanitize trims surrounding whitespace from every exported string and
// []string field of the struct v points to. Other kinds are left alone.
func sanitize(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return
	}
	val = val.Elem()

	for i := range val.NumField() {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}
		switch {
		case field.Kind() == reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
			for j := range field.Len() {
				elem := field.Index(j)
				elem.SetString(strings.TrimSpace(elem.String()))
			}
		}
	}
}
