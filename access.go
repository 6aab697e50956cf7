package fieldproxy

import "fmt"

// AccessPolicy decides whether a field may be read or written, it is evaluated on every access
type AccessPolicy func(field *Field, write bool) error

// Unrestricted allows access to every field regardless of its visibility
func Unrestricted(field *Field, write bool) error {
	return nil
}

// ExportedOnly allows access to exported fields only
func ExportedOnly(field *Field, write bool) error {
	if field.IsExported() {
		return nil
	}
	op := "read"
	if write {
		op = "write"
	}
	return fmt.Errorf("failed to %s unexported field %s: %w", op, field.Path(), ErrAccessDenied)
}
