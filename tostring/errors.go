package tostring

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnclassifiedValue matches every *UnclassifiedError.
var ErrUnclassifiedValue = errors.New("tostring: unclassified value shape")

// UnclassifiedError reports a driver value whose Go type the converter does
// not know. It is an integration failure, not a data error.
type UnclassifiedError struct {
	// Type is the Go type name of the offending value.
	Type string
}

func (e *UnclassifiedError) Error() string {
	return fmt.Sprintf("tostring: unclassified value of type %s", e.Type)
}

// Is makes errors.Is(err, ErrUnclassifiedValue) hold.
func (e *UnclassifiedError) Is(target error) bool {
	return target == ErrUnclassifiedValue
}

func unclassified(v any) error {
	return errors.WithStack(&UnclassifiedError{Type: fmt.Sprintf("%T", v)})
}
