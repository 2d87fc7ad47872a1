// Package storage implements the persistent memory of the satellite: a byte
// addressable EEPROM image with typed accessors, the address map of the
// stored variables and the running telemetry statistics.
package storage

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/config"
)

// Address is an offset into the EEPROM image.
type Address uint16

// Store defines a byte addressable persistent memory.
type Store interface {
	// ReadAt fills p with the bytes starting at addr.
	ReadAt(ctx context.Context, p []byte, addr Address) error

	// WriteAt writes p starting at addr.
	WriteAt(ctx context.Context, p []byte, addr Address) error

	// Size returns the size of the image in bytes.
	Size() int

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// Value defines the types that can be read and written with Read and Write.
type Value interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32
}

// Read reads a value stored little-endian at addr.
func Read[T Value](ctx context.Context, s Store, addr Address) (T, error) {
	var v T
	b := make([]byte, binary.Size(v))
	if err := s.ReadAt(ctx, b, addr); err != nil {
		return v, errors.Wrapf(err, "read %d bytes at 0x%04x error", len(b), uint16(addr))
	}

	var u uint64
	for i := range b {
		u |= uint64(b[i]) << (8 * i)
	}
	return T(u), nil
}

// Write writes v little-endian at addr.
func Write[T Value](ctx context.Context, s Store, addr Address, v T) error {
	b := make([]byte, binary.Size(v))
	u := uint64(v)
	for i := range b {
		b[i] = byte(u >> (8 * i))
	}

	if err := s.WriteAt(ctx, b, addr); err != nil {
		return errors.Wrapf(err, "write %d bytes at 0x%04x error", len(b), uint16(addr))
	}
	return nil
}

func checkRange(s Store, addr Address, n int) error {
	if int(addr)+n > s.Size() {
		return ErrAddressOutOfRange
	}
	return nil
}

// Setup creates the configured store and returns the EEPROM on top of it.
func Setup(c config.Config) (*EEPROM, error) {
	log.WithField("type", c.Storage.Type).Info("storage: setting up storage module")

	var s Store
	var err error

	switch c.Storage.Type {
	case "", "memory":
		s = NewMemoryStore(EEPROMSize)
	case "redis":
		s, err = NewRedisStore(c)
		if err != nil {
			return nil, errors.Wrap(err, "setup redis store error")
		}
	default:
		return nil, fmt.Errorf("unexpected storage type: %s", c.Storage.Type)
	}

	return NewEEPROM(s, Defaults{
		Callsign:          c.Satellite.Callsign,
		FSKReceiveWindow:  c.Satellite.FSKReceiveWindow,
		LoRaReceiveWindow: c.Satellite.LoRaReceiveWindow,
	}), nil
}
