// Package marshaler encodes and decodes the messages exchanged with the radio
// bridge, as Protobuf or JSON.
package marshaler

import (
	"bytes"
	"fmt"
)

// Type defines the marshaler type.
type Type int

// Marshaler types.
const (
	Protobuf Type = iota
	JSON
)

func (t Type) String() string {
	switch t {
	case JSON:
		return "json"
	default:
		return "protobuf"
	}
}

// ContentType returns the MIME type of the encoding.
func (t Type) ContentType() string {
	switch t {
	case JSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// ParseType parses the configured marshaler name.
func ParseType(s string) (Type, error) {
	switch s {
	case "", "protobuf":
		return Protobuf, nil
	case "json":
		return JSON, nil
	default:
		return Protobuf, fmt.Errorf("unknown marshaler: %s", s)
	}
}

// detect returns JSON when the payload is a JSON object.
func detect(b []byte) Type {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		return JSON
	}
	return Protobuf
}
