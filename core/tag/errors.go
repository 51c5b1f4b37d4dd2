package tag

import (
	"fmt"
	"reflect"
)

var (
	ErrTargetMustBePointer = fmt.Errorf("target must be a pointer")
	ErrTargetIsNil         = fmt.Errorf("target is nil")
	ErrUnsupportedType     = fmt.Errorf("unsupported type")
)

// FieldError reports which field carried the bad default
type FieldError struct {
	Path  string
	Kind  reflect.Kind
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (type: %s, default: %q): %v", e.Path, e.Kind, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
