// Package radio holds the modem configuration of the satellite transceiver
// and the state of the active modem.
package radio

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Modem defines the modem type.
type Modem byte

// Available modems.
const (
	ModemLoRa Modem = 'L'
	ModemFSK  Modem = 'F'
)

func (m Modem) String() string {
	switch m {
	case ModemLoRa:
		return "LoRa"
	case ModemFSK:
		return "FSK"
	default:
		return fmt.Sprintf("Modem(%d)", byte(m))
	}
}

// SpreadingFactorMode selects the LoRa spreading factor.
type SpreadingFactorMode uint8

// Spreading factor modes.
const (
	SpreadingFactorStandard SpreadingFactorMode = iota
	SpreadingFactorAlternative
)

// Bandwidths holds the LoRa bandwidths (kHz) addressable by index in a custom
// configuration.
var Bandwidths = [...]float64{7.8, 10.4, 15.6, 20.8, 31.25, 41.7, 62.5, 125.0}

// errors
var (
	ErrWrongModem           = errors.New("operation not supported on the active modem")
	ErrInvalidConfiguration = errors.New("invalid modem configuration")
)

// LoRaConfiguration holds the LoRa modem settings.
type LoRaConfiguration struct {
	Frequency       float64 // MHz
	Bandwidth       float64 // kHz
	SpreadingFactor uint8
	CodingRate      uint8 // 4/x
	SyncWord        uint8
	Power           int8  // dBm
	CurrentLimit    uint8 // mA
	PreambleLength  uint16
	CRC             bool
}

// Validate checks the settings against the transceiver limits.
func (c LoRaConfiguration) Validate() error {
	var bwOK bool
	for _, bw := range Bandwidths {
		if c.Bandwidth == bw {
			bwOK = true
		}
	}
	if c.Bandwidth == 250 || c.Bandwidth == 500 {
		bwOK = true
	}

	switch {
	case !bwOK:
		return errors.Wrapf(ErrInvalidConfiguration, "bandwidth %.2f kHz", c.Bandwidth)
	case c.SpreadingFactor < 6 || c.SpreadingFactor > 12:
		return errors.Wrapf(ErrInvalidConfiguration, "spreading factor %d", c.SpreadingFactor)
	case c.CodingRate < 5 || c.CodingRate > 8:
		return errors.Wrapf(ErrInvalidConfiguration, "coding rate 4/%d", c.CodingRate)
	case !validPower(c.Power):
		return errors.Wrapf(ErrInvalidConfiguration, "output power %d dBm", c.Power)
	case c.PreambleLength < 6:
		return errors.Wrapf(ErrInvalidConfiguration, "preamble length %d", c.PreambleLength)
	}
	return nil
}

// FSKConfiguration holds the FSK modem settings.
type FSKConfiguration struct {
	Frequency          float64 // MHz
	BitRate            float64 // kbps
	FrequencyDeviation float64 // kHz
	RXBandwidth        float64 // kHz
	Power              int8    // dBm
	CurrentLimit       uint8   // mA
	PreambleLength     uint16
	DataShaping        float64
}

// Validate checks the settings against the transceiver limits.
func (c FSKConfiguration) Validate() error {
	switch {
	case c.BitRate < 1.2 || c.BitRate > 300:
		return errors.Wrapf(ErrInvalidConfiguration, "bit rate %.2f kbps", c.BitRate)
	case c.FrequencyDeviation < 0 || c.FrequencyDeviation > 200:
		return errors.Wrapf(ErrInvalidConfiguration, "frequency deviation %.2f kHz", c.FrequencyDeviation)
	case !validPower(c.Power):
		return errors.Wrapf(ErrInvalidConfiguration, "output power %d dBm", c.Power)
	}
	return nil
}

func validPower(p int8) bool {
	return (p >= -3 && p <= 17) || p == 20
}

// Configuration holds the settings of the active modem.
type Configuration struct {
	Modem Modem
	LoRa  LoRaConfiguration
	FSK   FSKConfiguration
}

// Validate validates the settings of the selected modem.
func (c Configuration) Validate() error {
	switch c.Modem {
	case ModemLoRa:
		return c.LoRa.Validate()
	case ModemFSK:
		return c.FSK.Validate()
	default:
		return errors.Wrapf(ErrInvalidConfiguration, "unknown modem %s", c.Modem)
	}
}

// PacketInfo holds the signal quality of the last received frame.
type PacketInfo struct {
	SNR  float64 // dB
	RSSI float64 // dBm
}

// Driver defines the interface of the transceiver.
type Driver interface {
	// Configure puts the transceiver in receive mode with the given
	// configuration.
	Configure(ctx context.Context, c Configuration) error

	// Transmit sends the given frame using the given configuration.
	Transmit(ctx context.Context, c Configuration, frame []byte) error

	// PacketInfo returns the signal quality of the last received frame.
	PacketInfo() PacketInfo
}
