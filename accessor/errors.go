package accessor

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrIntegrationDefect reports that the assumed internal layout of an
	// opaque object does not match the object actually received. It is never
	// recoverable: the linked client is not the version the layout was
	// written against.
	ErrIntegrationDefect = errors.New("accessor: opaque layout mismatch")

	// ErrIndexOutOfRange is returned by indexed accessors for negative or
	// past-the-end indexes.
	ErrIndexOutOfRange = errors.New("accessor: index out of range")
)

// DefectError describes which member of which type failed to resolve.
type DefectError struct {
	Owner  string
	Member string
	Reason string
}

func (e *DefectError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("%s: %s: %s", ErrIntegrationDefect, e.Owner, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s: %s", ErrIntegrationDefect, e.Owner, e.Member, e.Reason)
}

// Is lets errors.Is match DefectError against ErrIntegrationDefect.
func (e *DefectError) Is(target error) bool {
	return target == ErrIntegrationDefect
}

func defect(owner fmt.Stringer, member, format string, args ...any) error {
	name := "<nil>"
	if owner != nil {
		name = owner.String()
	}
	return errors.WithStack(&DefectError{
		Owner:  name,
		Member: member,
		Reason: fmt.Sprintf(format, args...),
	})
}
