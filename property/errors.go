package property

import (
	"errors"
	"fmt"
)

var (
	// ErrPropertyNotFound is returned by Instances.Require when no value is set.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrTypeMismatch is wrapped by TypeMismatchError.
	ErrTypeMismatch = errors.New("property type mismatch")

	// ErrUnsupportedType is returned by From for Go values without a JSON-like form.
	ErrUnsupportedType = errors.New("unsupported property value type")
)

// TypeMismatchError reports a property that is set with a different kind than requested.
type TypeMismatchError struct {
	Name     string
	Expected Kind
	Actual   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %q: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
