package fieldproxy

import "errors"

var (
	//ErrNilInstance is returned when the supplied instance is nil or a nil pointer
	ErrNilInstance = errors.New("instance was nil")
	//ErrNotStruct is returned when the supplied instance is not a struct pointer
	ErrNotStruct = errors.New("instance is not a struct pointer")
	//ErrNotAddressable is returned when a struct is passed by value
	ErrNotAddressable = errors.New("instance is not addressable, pass a pointer")
	//ErrTypeMismatch is returned when an instance does not match proxy type
	ErrTypeMismatch = errors.New("instance type mismatch")
	//ErrDuplicateName is returned when two fields resolve to the same property name
	ErrDuplicateName = errors.New("duplicate property name")
	//ErrUnknownField is returned for property names the proxy does not define
	ErrUnknownField = errors.New("unknown field")
	//ErrAccessDenied is returned when access policy rejects field access
	ErrAccessDenied = errors.New("access denied")
	//ErrReadOnly is returned when writing a read-only property
	ErrReadOnly = errors.New("property is read-only")
	//ErrUnsupportedConversion is returned when a value can not be converted to a field type
	ErrUnsupportedConversion = errors.New("unsupported conversion")
)
