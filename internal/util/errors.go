// Package util holds small helpers shared across the internal packages.
package util

import "fmt"

// WrapError annotates err with a short description of the operation that
// failed, preserving it for errors.Is/errors.As via %w. It returns nil when
// err is nil so call sites can use it unconditionally inside error checks.
func WrapError(context string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", context, err)
}

// ToText renders a scanned Postgres value as the opaque string the
// evaluator's algebra kernel compares on, regardless of its underlying Go
// type (nil becomes the empty string, byte slices are converted directly).
func ToText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
