package terrain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every precondition failure returned from
// Validate, Compute and ComputeContext. Test for it with errors.Is.
var ErrInvalidInput = errors.New("terrain: invalid input")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
