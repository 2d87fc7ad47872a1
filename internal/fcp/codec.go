package fcp

import "bytes"

// Frame holds a decoded frame.
type Frame struct {
	FunctionID FunctionID
	OptData    []byte
}

// CheckCallsign validates that the frame starts with the given callsign.
func CheckCallsign(callsign string, frame []byte) error {
	if len(frame) < len(callsign) || !bytes.Equal(frame[:len(callsign)], []byte(callsign)) {
		return ErrCallsignMismatch
	}
	return nil
}

// ParseFunctionID returns the function ID of the given frame. Only the byte
// following the callsign is inspected.
func ParseFunctionID(callsign string, frame []byte) (FunctionID, error) {
	if len(frame) < len(callsign)+1 || len(frame) > MaxRadioBufferLength {
		return 0, ErrInvalidLength
	}

	id := FunctionID(frame[len(callsign)])
	if id > PrivateOffset+NumPrivateCommands {
		return 0, ErrInvalidFunctionID
	}

	return id, nil
}

// OptDataLength returns the length of the plaintext optional data.
func OptDataLength(callsign string, frame []byte) (int, error) {
	if _, err := ParseFunctionID(callsign, frame); err != nil {
		return 0, err
	}

	n := len(frame) - len(callsign) - 1
	if n > MaxOptDataLength {
		return 0, ErrInvalidLength
	}
	return n, nil
}

// OptData copies the plaintext optional data into out and returns the number
// of bytes copied.
func OptData(callsign string, frame []byte, out []byte) (int, error) {
	n, err := OptDataLength(callsign, frame)
	if err != nil {
		return 0, err
	}
	if len(out) < n {
		return 0, ErrBufferTooSmall
	}

	return copy(out, frame[len(callsign)+1:]), nil
}

// FrameLength returns the length of a plaintext frame.
func FrameLength(callsign string, optDataLen int) int {
	return len(callsign) + 1 + optDataLen
}

// Encode writes a plaintext frame into out and returns its length.
func Encode(out []byte, callsign string, id FunctionID, optData []byte) (int, error) {
	if len(optData) > MaxOptDataLength {
		return 0, ErrInvalidLength
	}

	n := FrameLength(callsign, len(optData))
	if n > MaxRadioBufferLength {
		return 0, ErrInvalidLength
	}
	if len(out) < n {
		return 0, ErrBufferTooSmall
	}

	copy(out, callsign)
	out[len(callsign)] = byte(id)
	copy(out[len(callsign)+1:], optData)

	return n, nil
}

// Decode validates the callsign, reads the function ID and extracts the
// optional data, decrypting it with the given gate when the function ID is in
// the private range. A nil gate is only allowed for plaintext frames.
func Decode(callsign string, frame []byte, g *Gate) (Frame, error) {
	if err := CheckCallsign(callsign, frame); err != nil {
		return Frame{}, err
	}

	id, err := ParseFunctionID(callsign, frame)
	if err != nil {
		return Frame{}, err
	}

	f := Frame{FunctionID: id}

	switch SelectMode(id) {
	case ModeEncrypted:
		if g == nil {
			return Frame{}, ErrGateRequired
		}
		f.OptData, err = g.OptData(callsign, frame)
		if err != nil {
			return Frame{}, err
		}
	default:
		n, err := OptDataLength(callsign, frame)
		if err != nil {
			return Frame{}, err
		}
		f.OptData = make([]byte, n)
		if _, err := OptData(callsign, frame, f.OptData); err != nil {
			return Frame{}, err
		}
	}

	return f, nil
}
