package fieldproxy

import (
	"errors"
	"fmt"
	"github.com/viant/fieldproxy/visitor"
	"reflect"
	"unsafe"
)

type (
	//Accessor represents a property getter and setter bound to one field of one instance
	Accessor struct {
		Name  string
		Field *Field
		Get   func() (interface{}, error)
		Set   func(value interface{}) error
	}

	//Proxy represents a live view of struct instance fields
	Proxy struct {
		proxyType *ProxyType
		instance  interface{}
		ptr       unsafe.Pointer
		accessors map[string]*Accessor
	}
)

// New creates a proxy exposing every declared field of instance, instance has to be a non nil struct pointer
func New(instance interface{}, opts ...Option) (*Proxy, error) {
	if err := checkInstance(instance); err != nil {
		return nil, err
	}
	proxyType, err := NewProxyType(reflect.TypeOf(instance), opts...)
	if err != nil {
		return nil, err
	}
	return proxyType.New(instance)
}

// newAccessor binds getter and setter closures to supplied field and instance pointer
func newAccessor(name string, field *Field, ptr unsafe.Pointer, opts *options) *Accessor {
	policy := opts.policy
	if policy == nil {
		policy = Unrestricted
	}
	readOnly := opts.isReadOnly(name) || opts.isReadOnly(field.Path())
	var setterOptions []SetterOption
	if opts.timeLayout != "" {
		setterOptions = append(setterOptions, WithSetterTimeLayout(opts.timeLayout))
	}
	logger := opts.logger
	ret := &Accessor{Name: name, Field: field}
	ret.Get = func() (interface{}, error) {
		if err := policy(field, false); err != nil {
			if logger != nil {
				logger.ErrorFromString(fmt.Sprintf("fieldproxy: get %s: %v", name, err))
			}
			return nil, err
		}
		value := field.Value(ptr)
		if logger != nil {
			logger.Debug(fmt.Sprintf("fieldproxy: get %s = %v", name, value))
		}
		return value, nil
	}
	ret.Set = func(value interface{}) error {
		err := policy(field, true)
		if err == nil && readOnly {
			err = fmt.Errorf("failed to write %s: %w", name, ErrReadOnly)
		}
		if err == nil {
			err = field.SetValue(ptr, value, setterOptions...)
		}
		if logger != nil {
			if err != nil {
				logger.ErrorFromString(fmt.Sprintf("fieldproxy: set %s: %v", name, err))
			} else {
				logger.Debug(fmt.Sprintf("fieldproxy: set %s = %v", name, value))
			}
		}
		return err
	}
	return ret
}

// Type returns proxy type
func (p *Proxy) Type() *ProxyType {
	return p.proxyType
}

// Instance returns proxied instance
func (p *Proxy) Instance() interface{} {
	return p.instance
}

// Names returns property names
func (p *Proxy) Names() []string {
	return p.proxyType.Names()
}

// Len returns number of properties
func (p *Proxy) Len() int {
	return len(p.accessors)
}

// Has returns true if proxy defines supplied property
func (p *Proxy) Has(name string) bool {
	_, ok := p.accessors[name]
	return ok
}

// Lookup returns property accessor or nil
func (p *Proxy) Lookup(name string) *Accessor {
	return p.accessors[name]
}

func (p *Proxy) accessor(name string) (*Accessor, error) {
	accessor, ok := p.accessors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v in %s", ErrUnknownField, name, p.proxyType.rType.String())
	}
	return accessor, nil
}

// Get returns current property value
func (p *Proxy) Get(name string) (interface{}, error) {
	accessor, err := p.accessor(name)
	if err != nil {
		return nil, err
	}
	return accessor.Get()
}

// Set sets property value on the proxied instance
func (p *Proxy) Set(name string, value interface{}) error {
	accessor, err := p.accessor(name)
	if err != nil {
		return err
	}
	return accessor.Set(value)
}

// IsSet returns true if property was flagged as set by the instance set marker
func (p *Proxy) IsSet(name string) bool {
	accessor, ok := p.accessors[name]
	if !ok {
		return false
	}
	return accessor.Field.IsSet(p.ptr)
}

// Each iterates accessors in declaration order until callback returns false or error
func (p *Proxy) Each(cb func(accessor *Accessor) (bool, error)) error {
	visit := visitor.Ordered(p.proxyType.names, func(name string) *Accessor {
		return p.accessors[name]
	})
	return visit(func(_ string, accessor *Accessor) (bool, error) {
		return cb(accessor)
	})
}

// Visitor returns visitor over property names and their current values
func (p *Proxy) Visitor() visitor.Visitor[string, interface{}] {
	return func(f func(key string, element interface{}) (bool, error)) error {
		return p.Each(func(accessor *Accessor) (bool, error) {
			value, err := accessor.Get()
			if err != nil {
				return false, err
			}
			return f(accessor.Name, value)
		})
	}
}

// Snapshot returns a copy of current readable property values, properties denied by access policy are skipped
func (p *Proxy) Snapshot() (map[string]interface{}, error) {
	var result = make(map[string]interface{}, len(p.accessors))
	err := p.Each(func(accessor *Accessor) (bool, error) {
		value, err := accessor.Get()
		if err != nil {
			if errors.Is(err, ErrAccessDenied) {
				return true, nil
			}
			return false, err
		}
		result[accessor.Name] = value
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
