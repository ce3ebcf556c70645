package myresult

import "github.com/pkg/errors"

var (
	// ErrInvalidFieldIndex is returned for a field index outside the result.
	ErrInvalidFieldIndex = errors.New("myresult: invalid field index")
	// ErrNoRow is returned when values are requested before the first row
	// or after the last one.
	ErrNoRow = errors.New("myresult: no current row")
	// ErrNoSource is returned for metadata requests on rows that are not
	// backed by a driver.
	ErrNoSource = errors.New("myresult: rows carry no driver metadata")
	// ErrTypeNames is returned when there are fewer type names than values.
	ErrTypeNames = errors.New("myresult: fewer type names than values")
)
