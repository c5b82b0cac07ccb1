// Package recovery decides how document readers react to recoverable
// errors: malformed attribute values, duplicate ids and references that do
// not resolve.
package recovery

import (
	"context"
	"fmt"
)

type Strategy interface {
	OnError(ctx context.Context, err error, location Location) Action
}

// Location is the source position of an error.
type Location struct {
	Line      int
	Element   string
	Component string
}

func (l Location) String() string {
	if l.Component == "" {
		return fmt.Sprintf("line %d <%s>", l.Line, l.Element)
	}
	return fmt.Sprintf("line %d <%s> %s", l.Line, l.Element, l.Component)
}

type Action int

const (
	// ActionFail aborts reading.
	ActionFail Action = iota
	// ActionSkip drops the offending value silently.
	ActionSkip
	// ActionWarn drops the offending value and logs a warning.
	ActionWarn
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	case ActionWarn:
		return "warn"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// StrictStrategy fails on the first error.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(context.Context, error, Location) Action {
	return ActionFail
}

// LenientStrategy records every error and keeps reading. The offending
// value falls back to its default and unresolved references stay unset.
// It is not safe for concurrent use.
type LenientStrategy struct {
	Errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx context.Context, err error, location Location) Action {
	if ctx != nil && ctx.Err() != nil {
		return ActionFail
	}
	s.Errors = append(s.Errors, fmt.Errorf("%s: %w", location, err))
	return ActionWarn
}
