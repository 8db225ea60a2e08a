package database

import (
	"reflect"
)

// BuildUpdates turns a patch struct into a column→value map for gorm's
// Updates. Only pointer fields tagged `col:"name"` take part, and only when
// non-nil. Column names come from the tags, never from request input.
func BuildUpdates(patch any) map[string]any {
	updates := make(map[string]any)

	v := reflect.ValueOf(patch)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return updates
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return updates
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		column := t.Field(i).Tag.Get("col")
		if column == "" {
			continue
		}
		field := v.Field(i)
		if field.Kind() != reflect.Pointer || field.IsNil() {
			continue
		}
		updates[column] = field.Elem().Interface()
	}

	return updates
}
