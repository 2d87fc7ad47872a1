package fcp

import "github.com/pkg/errors"

// errors
var (
	ErrCallsignMismatch  = errors.New("callsign mismatch")
	ErrInvalidLength     = errors.New("invalid frame length")
	ErrInvalidFunctionID = errors.New("invalid function id")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrBufferTooSmall    = errors.New("buffer too small")
	ErrGateRequired      = errors.New("encrypted function id requires a decryption gate")
)
