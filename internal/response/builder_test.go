package response

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("little endian in call order", func(t *testing.T) {
		assert := require.New(t)

		b := NewBuilder(16)
		assert.NoError(Add(b, uint8(0x01)))
		assert.NoError(Add(b, int16(-2)))
		assert.NoError(Add(b, uint16(0x0304)))
		assert.NoError(Add(b, int8(-1)))
		assert.NoError(Add(b, uint32(0x05060708)))

		assert.Equal([]byte{
			0x01,
			0xfe, 0xff,
			0x04, 0x03,
			0xff,
			0x08, 0x07, 0x06, 0x05,
		}, b.Bytes())
		assert.Equal(10, b.Len())
	})

	t.Run("named types", func(t *testing.T) {
		assert := require.New(t)

		type counter uint16
		b := NewBuilder(2)
		assert.NoError(Add(b, counter(0x0102)))
		assert.Equal([]byte{0x02, 0x01}, b.Bytes())
	})

	t.Run("overflow", func(t *testing.T) {
		assert := require.New(t)

		b := NewBuilder(3)
		assert.NoError(AddAll(b, uint8(1), uint8(2)))
		assert.Equal(ErrOverflow, Add(b, int16(3)))
		assert.Equal([]byte{1, 2}, b.Bytes())
	})
}

func TestScaling(t *testing.T) {
	tests := []struct {
		Name     string
		Got      interface{}
		Expected interface{}
	}{
		{"voltage", Voltage(4.2), uint8(210)},
		{"voltage saturates", Voltage(6.0), uint8(255)},
		{"negative voltage", Voltage(-1), uint8(0)},
		{"current", Current(0.1), int16(10000)},
		{"negative current", Current(-0.0005), int16(-50)},
		{"temperature", Temperature(21.5), int16(2150)},
		{"negative temperature", Temperature(-40.25), int16(-4025)},
		{"mcu temperature", MCUTemperature(33.4), int8(33)},
		{"snr", SNR(-7.25), int8(-29)},
		{"rssi", RSSI(-110.5), uint8(221)},
	}

	for _, tst := range tests {
		t.Run(tst.Name, func(t *testing.T) {
			require.Equal(t, tst.Expected, tst.Got)
		})
	}
}
