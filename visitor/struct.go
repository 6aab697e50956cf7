package visitor

import (
	"fmt"
	"github.com/viant/xunsafe"
	"reflect"
)

var structCache = NewSyncMap[reflect.Type, []*xunsafe.Field]()

// StructFields returns declared fields of struct type in declaration order, including unexported ones
func StructFields(structType reflect.Type) ([]*xunsafe.Field, error) {
	if structType == nil || structType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %v", structType)
	}
	return structCache.GetOrPut(structType, func() []*xunsafe.Field {
		fields := make([]*xunsafe.Field, structType.NumField())
		for i := range fields {
			fields[i] = xunsafe.NewField(structType.Field(i))
		}
		return fields
	}), nil
}

// FieldVisitorOf returns visitor over declared struct field descriptors keyed by field name
func FieldVisitorOf(structType reflect.Type) (Visitor[string, *xunsafe.Field], error) {
	fields, err := StructFields(structType)
	if err != nil {
		return nil, err
	}
	return func(f func(key string, element *xunsafe.Field) (bool, error)) error {
		for _, field := range fields {
			next, err := f(field.Name, field)
			if err != nil {
				return err
			}
			if !next {
				break
			}
		}
		return nil
	}, nil
}
