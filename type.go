package fieldproxy

import (
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

var timePtrType = reflect.PtrTo(timeType)

var durationType = reflect.TypeOf(time.Duration(0))

func isTimeType(candidate reflect.Type) bool {
	return ensureStruct(candidate) == timeType
}

// ensureStruct returns struct type for struct or pointer to struct, nil otherwise
func ensureStruct(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Struct:
		return t
	case reflect.Ptr:
		return ensureStruct(t.Elem())
	}
	return nil
}

// nestable returns true if a field type can be expanded into nested paths
func nestable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return !isTimeType(t)
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct && !isTimeType(t.Elem())
	}
	return false
}
