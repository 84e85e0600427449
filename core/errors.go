package core

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the stage that produced it.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindConfig      Kind = "config"
	KindFetch       Kind = "fetch"
	KindExtraction  Kind = "extraction"
	KindPersistence Kind = "persistence"
	KindGit         Kind = "git"
	KindInternal    Kind = "internal"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports bad caller input, such as a missing URL.
func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NewConfigError reports missing or invalid configuration.
func NewConfigError(msg string) error {
	return &Error{Kind: KindConfig, Msg: msg}
}

// NewFetchError wraps a failure to retrieve the source page.
func NewFetchError(err error) error {
	return &Error{Kind: KindFetch, Msg: "fetch", Err: err}
}

// NewExtractionError reports model output that could not be turned into a recipe.
func NewExtractionError(format string, args ...any) error {
	return &Error{Kind: KindExtraction, Msg: fmt.Sprintf(format, args...)}
}

// NewPersistenceError wraps a filesystem failure.
func NewPersistenceError(err error) error {
	return &Error{Kind: KindPersistence, Msg: "persist", Err: err}
}

// NewGitError wraps a failure of the guarded commit step.
func NewGitError(err error) error {
	return &Error{Kind: KindGit, Msg: "git", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsCallerFault reports whether err was caused by caller input rather than
// an internal failure.
func IsCallerFault(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}
