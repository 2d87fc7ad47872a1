package bridge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/brocaar/chirpstack-api/go/v3/common"
	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/pkg/errors"

	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

// LoRaContext holds the LoRa settings without a field in the bridge
// messages. It is carried little-endian in the TX info context.
type LoRaContext struct {
	SyncWord       uint8
	PreambleLength uint16
	CRC            uint8
	CurrentLimit   uint8
}

// FSKContext holds the FSK settings without a field in the bridge messages.
type FSKContext struct {
	PreambleLength uint16
	CurrentLimit   uint8
	DataShaping    uint8 // x10
}

// hz scales v to whole Hz.
func hz(v, scale float64) uint32 {
	return uint32(math.Round(v * scale))
}

func modulation(m radio.Modem) common.Modulation {
	if m == radio.ModemFSK {
		return common.Modulation_FSK
	}
	return common.Modulation_LORA
}

func modemFromModulation(m common.Modulation) (radio.Modem, bool) {
	switch m {
	case common.Modulation_LORA:
		return radio.ModemLoRa, true
	case common.Modulation_FSK:
		return radio.ModemFSK, true
	default:
		return 0, false
	}
}

func frequency(c radio.Configuration) uint32 {
	if c.Modem == radio.ModemFSK {
		return hz(c.FSK.Frequency, 1e6)
	}
	return hz(c.LoRa.Frequency, 1e6)
}

func power(c radio.Configuration) int32 {
	if c.Modem == radio.ModemFSK {
		return int32(c.FSK.Power)
	}
	return int32(c.LoRa.Power)
}

// EncodeContext returns the settings of the selected modem that have no
// field in the TX info.
func EncodeContext(c radio.Configuration) ([]byte, error) {
	var v interface{}
	switch c.Modem {
	case radio.ModemLoRa:
		lc := LoRaContext{
			SyncWord:       c.LoRa.SyncWord,
			PreambleLength: c.LoRa.PreambleLength,
			CurrentLimit:   c.LoRa.CurrentLimit,
		}
		if c.LoRa.CRC {
			lc.CRC = 1
		}
		v = lc
	case radio.ModemFSK:
		v = FSKContext{
			PreambleLength: c.FSK.PreambleLength,
			CurrentLimit:   c.FSK.CurrentLimit,
			DataShaping:    uint8(math.Round(c.FSK.DataShaping * 10)),
		}
	default:
		return nil, fmt.Errorf("unknown modem: %s", c.Modem)
	}

	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, v); err != nil {
		return nil, errors.Wrap(err, "encode context error")
	}
	return b.Bytes(), nil
}

// DownlinkTXInfo returns the TX info for transmitting with the given
// configuration.
func DownlinkTXInfo(modemID []byte, c radio.Configuration) (*gw.DownlinkTXInfo, error) {
	ctx, err := EncodeContext(c)
	if err != nil {
		return nil, err
	}

	txInfo := gw.DownlinkTXInfo{
		GatewayId:  modemID,
		Frequency:  frequency(c),
		Power:      power(c),
		Modulation: modulation(c.Modem),
		Timing:     gw.DownlinkTiming_IMMEDIATELY,
		TimingInfo: &gw.DownlinkTXInfo_ImmediatelyTimingInfo{
			ImmediatelyTimingInfo: &gw.ImmediatelyTimingInfo{},
		},
		Context: ctx,
	}

	switch c.Modem {
	case radio.ModemLoRa:
		txInfo.ModulationInfo = &gw.DownlinkTXInfo_LoraModulationInfo{
			LoraModulationInfo: &gw.LoRaModulationInfo{
				Bandwidth:       hz(c.LoRa.Bandwidth, 1e3),
				SpreadingFactor: uint32(c.LoRa.SpreadingFactor),
				CodeRate:        fmt.Sprintf("4/%d", c.LoRa.CodingRate),
			},
		}
	case radio.ModemFSK:
		txInfo.ModulationInfo = &gw.DownlinkTXInfo_FskModulationInfo{
			FskModulationInfo: &gw.FSKModulationInfo{
				FrequencyDeviation: hz(c.FSK.FrequencyDeviation, 1e3),
				Datarate:           hz(c.FSK.BitRate, 1e3),
			},
		}
	}

	return &txInfo, nil
}

// ChannelConfiguration returns the receive channel for the given
// configuration.
func ChannelConfiguration(c radio.Configuration) *gw.ChannelConfiguration {
	ch := gw.ChannelConfiguration{
		Frequency:  frequency(c),
		Modulation: modulation(c.Modem),
	}

	switch c.Modem {
	case radio.ModemLoRa:
		ch.ModulationConfig = &gw.ChannelConfiguration_LoraModulationConfig{
			LoraModulationConfig: &gw.LoRaModulationConfig{
				Bandwidth:        hz(c.LoRa.Bandwidth, 1e3),
				SpreadingFactors: []uint32{uint32(c.LoRa.SpreadingFactor)},
			},
		}
	case radio.ModemFSK:
		ch.ModulationConfig = &gw.ChannelConfiguration_FskModulationConfig{
			FskModulationConfig: &gw.FSKModulationConfig{
				Bandwidth: hz(c.FSK.RXBandwidth, 1e3),
				Bitrate:   hz(c.FSK.BitRate, 1e3),
			},
		}
	}

	return &ch
}
