// Package result holds the success-or-failure value returned by every
// backend operation.
package result

import (
	"errors"

	"github.com/nhle/mailagent/internal/apierr"
)

// Result carries either a value or a classified error, never both.
// The zero Result is a failure with an unknown error.
type Result[T any] struct {
	data T
	err  *apierr.Error
	ok   bool
}

// Success wraps data.
func Success[T any](data T) Result[T] {
	return Result[T]{data: data, ok: true}
}

// Failure wraps err. A nil err becomes an unknown-category error so a
// failure always carries one.
func Failure[T any](err *apierr.Error) Result[T] {
	if err == nil {
		err = apierr.New("An unknown error occurred.", 0, nil)
	}
	return Result[T]{err: err}
}

// FromError converts a plain Go error into a failure. An *apierr.Error
// anywhere in the chain is used as is; anything else is classified from
// its message.
func FromError[T any](err error) Result[T] {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return Failure[T](apiErr)
	}
	if err == nil {
		return Failure[T](nil)
	}
	return Failure[T](apierr.New(err.Error(), 0, nil).WithCause(err))
}

// IsSuccess reports whether the result holds data.
func (r Result[T]) IsSuccess() bool { return r.ok }

// Data returns the value and whether it is present.
func (r Result[T]) Data() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.data, true
}

// Err returns the error, or nil on success.
func (r Result[T]) Err() *apierr.Error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return apierr.New("An unknown error occurred.", 0, nil)
	}
	return r.err
}

// ErrorMessage returns the user-facing message of the error, or "" on
// success.
func (r Result[T]) ErrorMessage() string {
	if r.ok {
		return ""
	}
	return r.Err().UserFriendlyMessage()
}

// Unpack returns the result in Go's (value, error) form. The error is
// untyped nil on success.
func (r Result[T]) Unpack() (T, error) {
	if r.ok {
		return r.data, nil
	}
	var zero T
	return zero, r.Err()
}

// Map applies fn to the value of a successful result and passes failures
// through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Failure[U](r.Err())
	}
	return Success(fn(r.data))
}

// Then chains a second fallible step onto a successful result.
func Then[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return Failure[U](r.Err())
	}
	return fn(r.data)
}
