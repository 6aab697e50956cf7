package fieldproxy

import (
	"fmt"
	"github.com/viant/fieldproxy/visitor"
	"github.com/viant/xunsafe"
	"reflect"
)

// ProxyType represents per struct type descriptor table mapping property name to field descriptor
type ProxyType struct {
	rType      reflect.Type
	fields     []*Field
	names      []string
	properties map[string]*Field
	options    *options
}

// Type returns proxied struct type
func (t *ProxyType) Type() reflect.Type {
	return t.rType
}

// Fields returns field descriptors in declaration order
func (t *ProxyType) Fields() []*Field {
	return t.fields
}

// Names returns property names in declaration order
func (t *ProxyType) Names() []string {
	return append([]string{}, t.names...)
}

// Lookup returns field descriptor for supplied property name or nil
func (t *ProxyType) Lookup(name string) *Field {
	return t.properties[name]
}

// New creates a proxy for supplied instance
func (t *ProxyType) New(instance interface{}) (*Proxy, error) {
	if err := t.assertInstance(instance); err != nil {
		return nil, err
	}
	ptr := xunsafe.AsPointer(instance)
	ret := &Proxy{
		proxyType: t,
		instance:  instance,
		ptr:       ptr,
		accessors: make(map[string]*Accessor, len(t.names)),
	}
	for _, name := range t.names {
		ret.accessors[name] = newAccessor(name, t.properties[name], ptr, t.options)
	}
	return ret, nil
}

func (t *ProxyType) assertInstance(instance interface{}) error {
	if err := checkInstance(instance); err != nil {
		return err
	}
	if actual := reflect.TypeOf(instance).Elem(); actual != t.rType {
		return fmt.Errorf("%w: expected *%s, but had *%s", ErrTypeMismatch, t.rType.String(), actual.String())
	}
	return nil
}

// checkInstance validates that instance is a non nil pointer to struct
func checkInstance(instance interface{}) error {
	if instance == nil {
		return ErrNilInstance
	}
	value := reflect.ValueOf(instance)
	switch value.Kind() {
	case reflect.Ptr:
		if value.Type().Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: %T", ErrNotStruct, instance)
		}
		if value.IsNil() {
			return fmt.Errorf("%w: %T", ErrNilInstance, instance)
		}
		return nil
	case reflect.Struct:
		return fmt.Errorf("%w: %T", ErrNotAddressable, instance)
	}
	return fmt.Errorf("%w: %T", ErrNotStruct, instance)
}

func (t *ProxyType) addProperty(name string, field *Field) error {
	if prev, ok := t.properties[name]; ok {
		return fmt.Errorf("%w: %v used by %s and %s in %s", ErrDuplicateName, name, prev.Path(), field.Path(), t.rType.String())
	}
	if field.name == "" {
		field.name = name
		t.fields = append(t.fields, field)
	}
	t.properties[name] = field
	t.names = append(t.names, name)
	return nil
}

func (t *ProxyType) addFields(owner reflect.Type, ancestors []*segment, prefixes []string, exported bool, visited map[reflect.Type]bool) error {
	visit, err := visitor.FieldVisitorOf(owner)
	if err != nil {
		return err
	}
	var marker *Marker
	if HasSetMarker(owner) {
		if marker, err = NewMarker(owner); err != nil {
			return err
		}
	}
	return visit(func(name string, xField *xunsafe.Field) (bool, error) {
		if name == "_" {
			return true, nil
		}
		structField := owner.Field(int(xField.Index))
		segments := make([]*segment, 0, len(ancestors)+1)
		segments = append(append(segments, ancestors...), &segment{xField: xField, index: int(xField.Index), marker: marker})
		fieldExported := exported && structField.IsExported()
		names := t.options.getNames(name, xField.Tag)
		if len(names) == 0 {
			return true, nil
		}
		if len(prefixes) > 0 {
			names = qualify(prefixes, names)
		}
		field := newField("", segments, fieldExported)
		for _, property := range names {
			if err := t.addProperty(property, field); err != nil {
				return false, err
			}
		}
		if !t.options.nested || !nestable(structField.Type) {
			return true, nil
		}
		structType := ensureStruct(structField.Type)
		if visited[structType] {
			return true, nil
		}
		visited[structType] = true
		err := t.addFields(structType, segments, names, fieldExported, visited)
		delete(visited, structType)
		return err == nil, err
	})
}

func qualify(prefixes []string, names []string) []string {
	var result = make([]string, 0, len(prefixes)*len(names))
	for _, prefix := range prefixes {
		for _, name := range names {
			result = append(result, prefix+"."+name)
		}
	}
	return result
}

// NewProxyType creates a proxy type for supplied struct or pointer to struct type
func NewProxyType(rType reflect.Type, opts ...Option) (*ProxyType, error) {
	if rType == nil {
		return nil, ErrNilInstance
	}
	structType := ensureStruct(rType)
	if structType == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, rType.String())
	}
	ret := &ProxyType{
		rType:      structType,
		properties: make(map[string]*Field),
		options:    newOptions(opts),
	}
	visited := map[reflect.Type]bool{structType: true}
	if err := ret.addFields(structType, nil, nil, true, visited); err != nil {
		return nil, err
	}
	return ret, nil
}
