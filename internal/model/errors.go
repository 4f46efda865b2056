package model

import (
	"errors"
	"strings"
)

var (
	ErrEmptyInput = errors.New("csv is empty")
	ErrSchema     = errors.New("missing required columns")
	ErrValidation = errors.New("no valid tasks")
)

// Error is returned by Build. It satisfies errors.Is against its Kind.
type Error struct {
	Kind    error
	Missing []string
	Detail  string
}

func (e *Error) Error() string {
	if e == nil || e.Kind == nil {
		return "model error"
	}
	msg := e.Kind.Error()
	if len(e.Missing) > 0 {
		msg += ": " + strings.Join(e.Missing, ", ")
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return e != nil && target == e.Kind
}
