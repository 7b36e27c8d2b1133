package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AgentNotFoundError reports an agent id unknown to both the store and the roster.
type AgentNotFoundError struct {
	ID int64
}

func (e *AgentNotFoundError) Error() string { return fmt.Sprintf("Agent %d not found.", e.ID) }

func (e *AgentNotFoundError) Unwrap() error { return ErrNotFound }
