package services

import (
	"errors"
	"strings"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrRoleImmutable         = errors.New("profile role cannot be changed")
	ErrProfileExists         = errors.New("profile already exists")
	ErrInvalidLinkTransition = errors.New("invalid doctor-patient link status change")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func invalid(fields ...string) error {
	return &ValidationError{Fields: fields}
}
