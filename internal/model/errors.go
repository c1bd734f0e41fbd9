package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrForbidden        = errors.New("forbidden")
	ErrTransientWrite   = errors.New("transient write failure")
	ErrSelfConversation = errors.New("cannot open a conversation with yourself")
	ErrEmptyMessage     = errors.New("message body is empty")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// PermissionError reports a send rejected by the permission engine.
type PermissionError struct {
	Verdict Verdict
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPermissionDenied, e.Verdict)
}

// Is makes errors.Is(err, ErrPermissionDenied) match.
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}
