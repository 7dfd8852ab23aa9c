package types

import (
	"errors"
	"fmt"
)

type FetchErrorKind string

const (
	FetchErrorNetwork FetchErrorKind = "network"
	FetchErrorStatus  FetchErrorKind = "status"
	FetchErrorDecode  FetchErrorKind = "decode"
	FetchErrorUnknown FetchErrorKind = "unknown"
)

// FetchError is returned by price providers. The kind is kept for logs and
// metrics only, the dashboard shows every kind the same way.
type FetchError struct {
	Provider string
	Kind     FetchErrorKind
	Err      error
}

func NewFetchError(provider string, kind FetchErrorKind, err error) *FetchError {
	return &FetchError{Provider: provider, Kind: kind, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError wraps err in a FetchError unless it already is one.
func AsFetchError(provider string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NewFetchError(provider, FetchErrorUnknown, err)
}
