package fieldproxy

import (
	"fmt"
	"github.com/viant/xunsafe"
	"reflect"
	"strings"
	"unsafe"
)

const (
	//SetMarkerTag defines set marker tag
	SetMarkerTag = "setMarker"
	//PresenceMarkerTag defines presence marker tag
	PresenceMarkerTag = "presenceMarker"
)

// Marker tracks which struct fields were written through a proxy
type Marker struct {
	t      reflect.Type
	holder *xunsafe.Field
	fields []*xunsafe.Field //indexed by owner field position
}

// IsSetMarker returns true if tag defines set marker holder
func IsSetMarker(tag reflect.StructTag) bool {
	if _, ok := tag.Lookup(SetMarkerTag); ok {
		return true
	}
	_, ok := tag.Lookup(PresenceMarkerTag)
	return ok
}

// HasSetMarker returns true if struct type defines set marker holder
func HasSetMarker(t reflect.Type) bool {
	if t = ensureStruct(t); t == nil {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if IsSetMarker(t.Field(i).Tag) {
			return true
		}
	}
	return false
}

// Has returns true if marker defines a flag for owner field at supplied index
func (m *Marker) Has(index int) bool {
	return index >= 0 && index < len(m.fields) && m.fields[index] != nil
}

// EnsureHolder allocates marker holder if it is nil
func (m *Marker) EnsureHolder(ptr unsafe.Pointer) {
	if m.holder.Type.Kind() != reflect.Ptr || !m.holder.IsNil(ptr) {
		return
	}
	holder := reflect.New(m.holder.Type.Elem())
	*(*unsafe.Pointer)(m.holder.Pointer(ptr)) = holder.UnsafePointer()
}

func (m *Marker) holderPointer(ptr unsafe.Pointer) unsafe.Pointer {
	if m.holder.Type.Kind() == reflect.Ptr {
		return m.holder.ValuePointer(ptr)
	}
	return m.holder.Pointer(ptr)
}

// Set sets field marker
func (m *Marker) Set(ptr unsafe.Pointer, index int, flag bool) error {
	if !m.Has(index) {
		return fmt.Errorf("field at index %v was missing in set marker %s", index, m.t.String())
	}
	m.EnsureHolder(ptr)
	m.fields[index].SetBool(m.holderPointer(ptr), flag)
	return nil
}

// IsSet returns true if field has been set, fields without marker are assumed set
func (m *Marker) IsSet(ptr unsafe.Pointer, index int) bool {
	if !m.Has(index) {
		return true
	}
	if m.holder.Type.Kind() == reflect.Ptr && m.holder.IsNil(ptr) {
		return false
	}
	return m.fields[index].Bool(m.holderPointer(ptr))
}

// NewMarker returns new struct field set marker
func NewMarker(t reflect.Type) (*Marker, error) {
	if t = ensureStruct(t); t == nil {
		return nil, fmt.Errorf("supplied type is not struct")
	}
	index := make(map[string]int, t.NumField())
	result := &Marker{t: t, fields: make([]*xunsafe.Field, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index[field.Name] = i
		if IsSetMarker(field.Tag) {
			result.holder = xunsafe.NewField(field)
		}
	}
	if result.holder == nil {
		return nil, fmt.Errorf("holder was empty for %s", t.String())
	}
	holderType := ensureStruct(result.holder.Type)
	if holderType == nil {
		return nil, fmt.Errorf("marker holder %s.%s is not a struct", t.String(), result.holder.Name)
	}
	var unmatched []string
	for i := 0; i < holderType.NumField(); i++ {
		markerField := holderType.Field(i)
		pos, ok := index[markerField.Name]
		if !ok {
			unmatched = append(unmatched, markerField.Name)
			continue
		}
		if markerField.Type.Kind() != reflect.Bool {
			return nil, fmt.Errorf("marker field %s.%s is not bool", holderType.String(), markerField.Name)
		}
		result.fields[pos] = xunsafe.NewField(markerField)
	}
	if len(unmatched) > 0 {
		return nil, fmt.Errorf("marker fields: '%v' do not have corresponding struct field in %s", strings.Join(unmatched, ","), t.String())
	}
	return result, nil
}
