package common

import (
	"context"
	"errors"
)

// Source records where a Result's value came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Result carries the outcome of a remote call together with its provenance.
// A failed Result holds the error until UseFallback substitutes a local value;
// the original error stays available through Cause.
type Result[T any] struct {
	value  T
	err    error
	cause  error
	source Source
}

// Attempt runs fn and captures its value or error.
func Attempt[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return Result[T]{value: zero, err: err, cause: err, source: SourceRemote}
	}
	return Result[T]{value: v, source: SourceRemote}
}

// Remote wraps a value obtained from the API.
func Remote[T any](v T) Result[T] {
	return Result[T]{value: v, source: SourceRemote}
}

// Failure wraps an error raised before any remote call was made.
func Failure[T any](err error) Result[T] {
	var zero T
	return Result[T]{value: zero, err: err, cause: err, source: SourceRemote}
}

// Failed reports whether the result still carries an unhandled error.
func (r Result[T]) Failed() bool {
	return r.err != nil
}

// Err returns the unhandled error, nil after a fallback was applied.
func (r Result[T]) Err() error {
	return r.err
}

// Cause returns the remote error that triggered a fallback, if any.
func (r Result[T]) Cause() error {
	return r.cause
}

// Value returns the held value; the zero value for a failed result.
func (r Result[T]) Value() T {
	return r.value
}

// Source reports whether the value is remote or a fallback.
func (r Result[T]) Source() Source {
	return r.source
}

// Unwrap returns the value and the unhandled error.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// UseFallback replaces a failed result with the value produced by fallback
// and logs the substitution. Successful results pass through untouched.
func (r Result[T]) UseFallback(logger *Logger, name string, fallback func() T) Result[T] {
	return r.UseFallbackIf(logger, name, nil, fallback)
}

// UseFallbackIf is UseFallback restricted to errors accepted by eligible.
// A nil eligible accepts every error.
func (r Result[T]) UseFallbackIf(logger *Logger, name string, eligible func(error) bool, fallback func() T) Result[T] {
	if r.err == nil {
		return r
	}
	if eligible != nil && !eligible(r.err) {
		return r
	}
	if logger != nil {
		logger.Warn().Err(r.err).Str("fallback", name).Msg("Remote call failed, using fallback")
	}
	return Result[T]{value: fallback(), cause: r.err, source: SourceFallback}
}

// NotCancelled accepts every error except context cancellation and deadline
// expiry, for fallbacks that must not mask an aborted operation.
func NotCancelled(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
