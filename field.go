package fieldproxy

import (
	"github.com/viant/xunsafe"
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

type (
	//segment represents one struct field on the way from the proxied struct to a leaf field
	segment struct {
		xField *xunsafe.Field
		index  int
		marker *Marker
	}

	//Field represents a field descriptor with get/set capability bypassing field visibility
	Field struct {
		name       string
		segments   []*segment
		exported   bool
		primitive  bool
		mux        sync.RWMutex
		converters map[reflect.Type]Setter
	}
)

// Name returns primary property name
func (f *Field) Name() string {
	return f.name
}

// Path returns dotted struct field path
func (f *Field) Path() string {
	if len(f.segments) == 1 {
		return f.segments[0].xField.Name
	}
	var names = make([]string, 0, len(f.segments))
	for _, seg := range f.segments {
		names = append(names, seg.xField.Name)
	}
	return strings.Join(names, ".")
}

// Type returns field type
func (f *Field) Type() reflect.Type {
	return f.leaf().xField.Type
}

// IsExported returns true if every field on the path is exported
func (f *Field) IsExported() bool {
	return f.exported
}

// IsNested returns true if field is reached through a parent struct field
func (f *Field) IsNested() bool {
	return len(f.segments) > 1
}

func (f *Field) leaf() *segment {
	return f.segments[len(f.segments)-1]
}

// holder returns pointer to the struct holding leaf field, nil pointer parents are allocated when requested
func (f *Field) holder(ptr unsafe.Pointer, allocate bool) (unsafe.Pointer, bool) {
	count := len(f.segments) - 1
	for i := 0; i < count; i++ {
		parent := f.segments[i].xField
		fieldPtr := parent.Pointer(ptr)
		if parent.Type.Kind() == reflect.Ptr {
			if *(*unsafe.Pointer)(fieldPtr) == nil {
				if !allocate {
					return nil, false
				}
				value := reflect.New(parent.Type.Elem())
				*(*unsafe.Pointer)(fieldPtr) = value.UnsafePointer()
			}
			fieldPtr = xunsafe.DerefPointer(fieldPtr)
		}
		ptr = fieldPtr
	}
	return ptr, true
}

// mark flags every segment on the path in its holder set marker, segments without marker field are skipped
func (f *Field) mark(ptr unsafe.Pointer) error {
	for i, seg := range f.segments {
		if seg.marker != nil && seg.marker.Has(seg.index) {
			if err := seg.marker.Set(ptr, seg.index, true); err != nil {
				return err
			}
		}
		if i == len(f.segments)-1 {
			break
		}
		ptr = seg.xField.Pointer(ptr)
		if seg.xField.Type.Kind() == reflect.Ptr {
			ptr = xunsafe.DerefPointer(ptr)
		}
	}
	return nil
}

// Value returns a copy of field value, zero value is returned when a parent pointer is nil
func (f *Field) Value(ptr unsafe.Pointer) interface{} {
	holder, ok := f.holder(ptr, false)
	if !ok {
		return reflect.Zero(f.Type()).Interface()
	}
	return target(f.leaf().xField, holder).Interface()
}

// SetValue sets field value, converting value to field type when needed
func (f *Field) SetValue(ptr unsafe.Pointer, value interface{}, opts ...SetterOption) error {
	holder, _ := f.holder(ptr, true)
	xField := f.leaf().xField
	srcType := reflect.TypeOf(value)
	if srcType == xField.Type {
		if f.primitive {
			xField.SetValue(holder, value)
		} else {
			target(xField, holder).Set(reflect.ValueOf(value))
		}
	} else if err := f.setter(srcType)(value, xField, holder, opts...); err != nil {
		return err
	}
	return f.mark(ptr)
}

// IsSet returns true if field was flagged by set marker, fields without marker are always set
func (f *Field) IsSet(ptr unsafe.Pointer) bool {
	leaf := f.leaf()
	if leaf.marker == nil {
		return true
	}
	holder, ok := f.holder(ptr, false)
	if !ok {
		return false
	}
	return leaf.marker.IsSet(holder, leaf.index)
}

func (f *Field) setter(srcType reflect.Type) Setter {
	f.mux.RLock()
	setter, ok := f.converters[srcType]
	f.mux.RUnlock()
	if ok {
		return setter
	}
	setter = LookupSetter(srcType, f.Type())
	f.mux.Lock()
	if f.converters == nil {
		f.converters = make(map[reflect.Type]Setter)
	}
	f.converters[srcType] = setter
	f.mux.Unlock()
	return setter
}

func newField(name string, segments []*segment, exported bool) *Field {
	ret := &Field{name: name, segments: segments, exported: exported}
	ret.primitive = isPrimitive(ret.Type())
	return ret
}

// isPrimitive returns true for predeclared scalar types
func isPrimitive(t reflect.Type) bool {
	if t.PkgPath() != "" || t.Name() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String, reflect.Float32, reflect.Float64:
		return true
	}
	return isInt(t.Kind()) || (isUint(t.Kind()) && t.Kind() != reflect.Uintptr)
}
