package entity

import "errors"

var (
	ErrMissingLabel   = errors.New("missing required field: label")
	ErrMissingChain   = errors.New("missing required field: chain")
	ErrMissingAddress = errors.New("missing required field: address")
	ErrUnknownChain   = errors.New("unknown chain")
	ErrMissingName    = errors.New("missing required field: name")

	// ErrPortExhausted is returned when no free TCP port exists in the searched range.
	ErrPortExhausted = errors.New("no free port in range")

	// ErrRemoteRequest marks every failure of a call to the backend API.
	ErrRemoteRequest = errors.New("remote request failed")

	// ErrUnknownAttribute is returned when a record has no field with the requested JSON name.
	ErrUnknownAttribute = errors.New("unknown attribute")
)
