package storage

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

var testDefaults = Defaults{
	Callsign:          "FOSSASAT-1B",
	FSKReceiveWindow:  20,
	LoRaReceiveWindow: 40,
}

type EEPROMTestSuite struct {
	suite.Suite

	ctx    context.Context
	eeprom *EEPROM
}

func (ts *EEPROMTestSuite) SetupTest() {
	ts.ctx = context.Background()
	ts.eeprom = NewEEPROM(NewMemoryStore(EEPROMSize), testDefaults)
}

func (ts *EEPROMTestSuite) TestInit() {
	assert := require.New(ts.T())

	first, err := ts.eeprom.Init(ts.ctx)
	assert.NoError(err)
	assert.True(first)

	callsign, err := ts.eeprom.Callsign(ts.ctx)
	assert.NoError(err)
	assert.Equal("FOSSASAT-1B", callsign)

	first, err = ts.eeprom.Init(ts.ctx)
	assert.NoError(err)
	assert.False(first)
}

func (ts *EEPROMTestSuite) TestWipe() {
	assert := require.New(ts.T())

	assert.NoError(ts.eeprom.Wipe(ts.ctx))
	assert.NoError(ts.eeprom.SetCallsign(ts.ctx, "TEST"))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemLoRa, true))
	assert.NoError(ts.eeprom.SetReceiveWindows(ts.ctx, 1, 2))
	assert.NoError(ts.eeprom.IncrementRestartCounter(ts.ctx))

	assert.NoError(ts.eeprom.Wipe(ts.ctx))

	callsign, err := ts.eeprom.Callsign(ts.ctx)
	assert.NoError(err)
	assert.Equal("FOSSASAT-1B", callsign)

	fc, err := ts.eeprom.FrameCounters(ts.ctx)
	assert.NoError(err)
	assert.Equal(FrameCounters{}, fc)

	fsk, lora, err := ts.eeprom.ReceiveWindows(ts.ctx)
	assert.NoError(err)
	assert.Equal(uint8(20), fsk)
	assert.Equal(uint8(40), lora)

	rc, err := ts.eeprom.RestartCounter(ts.ctx)
	assert.NoError(err)
	assert.Zero(rc)

	pc, err := ts.eeprom.PowerConfig(ts.ctx)
	assert.NoError(err)
	assert.Equal(DefaultPowerConfig(), pc)

	s, err := ts.eeprom.Stats(ts.ctx)
	assert.NoError(err)
	assert.True(s.ChargingCurrent.Empty())
	assert.True(s.MCUTemperature.Empty())

	// bytes outside the map are left erased
	b, err := Read[uint8](ts.ctx, ts.eeprom.Store(), EEPROMSize-1)
	assert.NoError(err)
	assert.Equal(uint8(resetValue), b)
}

func (ts *EEPROMTestSuite) TestCallsign() {
	tests := []struct {
		Name          string
		Callsign      string
		ExpectedError error
	}{
		{"single character", "A", nil},
		{"longest callsign", "ABCDEFGHIJKLMNOPQRSTUVWXYZ01234", nil},
		{"empty", "", ErrInvalidCallsign},
		{"too long", "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345", ErrInvalidCallsign},
	}

	for _, tst := range tests {
		ts.T().Run(tst.Name, func(t *testing.T) {
			assert := require.New(t)
			assert.NoError(ts.eeprom.Wipe(ts.ctx))

			err := ts.eeprom.SetCallsign(ts.ctx, tst.Callsign)
			assert.Equal(tst.ExpectedError, err)

			callsign, err := ts.eeprom.Callsign(ts.ctx)
			assert.NoError(err)
			if tst.ExpectedError == nil {
				assert.Equal(tst.Callsign, callsign)

				// the stored length includes the terminator
				l, err := Read[uint8](ts.ctx, ts.eeprom.Store(), CallsignLengthAddr)
				assert.NoError(err)
				assert.Equal(uint8(len(tst.Callsign)+1), l)
			} else {
				assert.Equal("FOSSASAT-1B", callsign)
			}
		})
	}
}

func (ts *EEPROMTestSuite) TestCallsignErased() {
	assert := require.New(ts.T())

	_, err := ts.eeprom.Callsign(ts.ctx)
	assert.Equal(ErrInvalidCallsign, err)
}

func (ts *EEPROMTestSuite) TestIncrementFrameCounter() {
	assert := require.New(ts.T())
	assert.NoError(ts.eeprom.Wipe(ts.ctx))

	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemLoRa, true))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemLoRa, false))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemLoRa, false))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemFSK, true))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemFSK, true))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemFSK, true))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemFSK, false))

	fc, err := ts.eeprom.FrameCounters(ts.ctx)
	assert.NoError(err)
	assert.Equal(FrameCounters{
		LoRaValid:   1,
		LoRaInvalid: 2,
		FSKValid:    3,
		FSKInvalid:  1,
	}, fc)
}

func (ts *EEPROMTestSuite) TestFrameCounterWraps() {
	assert := require.New(ts.T())
	assert.NoError(ts.eeprom.Wipe(ts.ctx))

	assert.NoError(Write(ts.ctx, ts.eeprom.Store(), FSKInvalidCounterAddr, uint16(0xffff)))
	assert.NoError(ts.eeprom.IncrementFrameCounter(ts.ctx, radio.ModemFSK, false))

	fc, err := ts.eeprom.FrameCounters(ts.ctx)
	assert.NoError(err)
	assert.Zero(fc.FSKInvalid)
}

func (ts *EEPROMTestSuite) TestUpdatePowerConfig() {
	assert := require.New(ts.T())
	assert.NoError(ts.eeprom.Wipe(ts.ctx))

	assert.NoError(ts.eeprom.UpdatePowerConfig(ts.ctx, func(pc *PowerConfig) {
		pc.TransmitEnabled = false
		pc.MPPTKeepAliveEnabled = true
	}))

	b, err := Read[uint8](ts.ctx, ts.eeprom.Store(), PowerConfigAddr)
	assert.NoError(err)
	assert.Equal(uint8(0b01110), b)
}

func (ts *EEPROMTestSuite) TestCounters() {
	assert := require.New(ts.T())
	assert.NoError(ts.eeprom.Wipe(ts.ctx))

	assert.NoError(ts.eeprom.IncrementDeploymentCounter(ts.ctx))
	assert.NoError(ts.eeprom.IncrementDeploymentCounter(ts.ctx))
	dc, err := ts.eeprom.DeploymentCounter(ts.ctx)
	assert.NoError(err)
	assert.Equal(uint8(2), dc)

	assert.NoError(ts.eeprom.AddUptime(ts.ctx, 40))
	assert.NoError(ts.eeprom.AddUptime(ts.ctx, 20))
	up, err := ts.eeprom.Uptime(ts.ctx)
	assert.NoError(err)
	assert.Equal(uint32(60), up)
}

func TestEEPROM(t *testing.T) {
	suite.Run(t, new(EEPROMTestSuite))
}

func TestReadWrite(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()
	s := NewMemoryStore(8)

	assert.NoError(Write(ctx, s, 0, int16(-2)))
	assert.NoError(Write(ctx, s, 2, uint32(0x01020304)))

	b := make([]byte, 6)
	assert.NoError(s.ReadAt(ctx, b, 0))
	assert.Equal([]byte{0xfe, 0xff, 0x04, 0x03, 0x02, 0x01}, b)

	v, err := Read[int16](ctx, s, 0)
	assert.NoError(err)
	assert.Equal(int16(-2), v)

	u, err := Read[uint32](ctx, s, 2)
	assert.NoError(err)
	assert.Equal(uint32(0x01020304), u)

	_, err = Read[uint32](ctx, s, 6)
	assert.Error(err)
	assert.Equal(ErrAddressOutOfRange, errors.Cause(err))
}

func TestPowerConfig(t *testing.T) {
	assert := require.New(t)

	assert.Equal(uint8(0b10110), DefaultPowerConfig().Byte())

	for b := 0; b < 32; b++ {
		assert.Equal(uint8(b), ParsePowerConfig(uint8(b)).Byte())
	}
}
