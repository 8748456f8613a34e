package access

import (
	"errors"
	"fmt"
)

var ErrPermissionDenied = errors.New("permission denied")

type PermissionError struct {
	Op       Op
	Resource Resource
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrPermissionDenied
}
