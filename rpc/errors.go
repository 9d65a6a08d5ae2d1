package rpc

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is wrapped by Decode for actions outside the known set.
var ErrUnknownAction = errors.New("unknown action")

// ErrMalformed is wrapped when the body is not a JSON object.
var ErrMalformed = errors.New("malformed request")

// ValidationError reports a request field that is missing or out of range.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// UnknownActionError matches ErrUnknownAction with errors.Is.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string { return "Unknown action: " + e.Action }

func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

func unknownAction(action string) error {
	return &UnknownActionError{Action: action}
}
