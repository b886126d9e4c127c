package browser

import (
	"errors"
	"fmt"
)

// ConflictError reports that a profile name is already taken. Callers that
// generate fresh random names treat it as benign and proceed with the
// existing profile.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("profile %q already exists", e.Name)
}

// IsConflict reports whether err is (or wraps) a profile name conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
