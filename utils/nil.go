package utils

import "reflect"

// IsNil reports whether i is nil or an interface holding a nil pointer, map, slice,
// channel or func. Kinds which cannot be nil report false.
func IsNil(i any) bool {
	if i == nil {
		return true
	}

	switch v := reflect.ValueOf(i); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.UnsafePointer, reflect.Interface, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
