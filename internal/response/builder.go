// Package response serializes telemetry responses.
package response

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrOverflow is returned when a field does not fit the response.
var ErrOverflow = errors.New("response capacity exceeded")

// Field defines the fixed-width numeric types a response can carry.
type Field interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32
}

// Builder appends fixed-width fields, least-significant byte first, in call
// order.
type Builder struct {
	buf []byte
	max int
}

// NewBuilder returns a Builder holding at most max bytes.
func NewBuilder(max int) *Builder {
	return &Builder{
		buf: make([]byte, 0, max),
		max: max,
	}
}

// Bytes returns the serialized fields.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Add appends v to the builder.
func Add[T Field](b *Builder, v T) error {
	size := binary.Size(v)
	if len(b.buf)+size > b.max {
		return ErrOverflow
	}

	u := uint64(v)
	for i := 0; i < size; i++ {
		b.buf = append(b.buf, byte(u>>(8*i)))
	}
	return nil
}

// AddAll appends all values to the builder.
func AddAll[T Field](b *Builder, values ...T) error {
	for _, v := range values {
		if err := Add(b, v); err != nil {
			return err
		}
	}
	return nil
}

// Telemetry multipliers, expressed in the unit the value is stored in.
const (
	VoltageMultiplier     = 20 // mV
	VoltageUnit           = 1000
	CurrentMultiplier     = 10 // uA
	CurrentUnit           = 1000000
	TemperatureMultiplier = 10 // mdeg C
	TemperatureUnit       = 1000
)

// Voltage scales a voltage in V to 20 mV steps.
func Voltage(v float64) uint8 {
	return uint8(saturate(v*VoltageUnit/VoltageMultiplier, 0, math.MaxUint8))
}

// Current scales a current in A to 10 uA steps.
func Current(a float64) int16 {
	return int16(saturate(a*CurrentUnit/CurrentMultiplier, math.MinInt16, math.MaxInt16))
}

// Temperature scales a temperature in deg C to 10 mdeg C steps.
func Temperature(c float64) int16 {
	return int16(saturate(c*TemperatureUnit/TemperatureMultiplier, math.MinInt16, math.MaxInt16))
}

// MCUTemperature rounds a temperature in deg C to whole degrees.
func MCUTemperature(c float64) int8 {
	return int8(saturate(c, math.MinInt8, math.MaxInt8))
}

// SNR scales a signal-to-noise ratio in dB to quarter dB steps.
func SNR(snr float64) int8 {
	return int8(saturate(snr*4, math.MinInt8, math.MaxInt8))
}

// RSSI scales a received signal strength in dBm to negated half dBm steps.
func RSSI(rssi float64) uint8 {
	return uint8(saturate(rssi*-2, 0, math.MaxUint8))
}

func saturate(v, lo, hi float64) float64 {
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
