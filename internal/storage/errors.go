package storage

import "github.com/pkg/errors"

// errors
var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrInvalidCallsign   = errors.New("invalid callsign")
)
