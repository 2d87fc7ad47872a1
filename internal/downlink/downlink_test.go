package downlink

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
	"github.com/fossasystems/fossasat-fcp/internal/test"
)

type fixture struct {
	ctx        context.Context
	driver     *test.RadioDriver
	controller *radio.Controller
	eeprom     *storage.EEPROM
	gate       *fcp.Gate
	sender     *Sender
}

func setup(t *testing.T) fixture {
	assert := require.New(t)

	f := fixture{
		ctx:    context.Background(),
		driver: test.NewRadioDriver(),
		eeprom: storage.NewEEPROM(storage.NewMemoryStore(storage.EEPROMSize), storage.Defaults{
			Callsign:          test.Callsign,
			FSKReceiveWindow:  20,
			LoRaReceiveWindow: 40,
		}),
	}
	assert.NoError(f.eeprom.Wipe(f.ctx))

	var err error
	f.gate, err = fcp.NewGate(test.Key, test.Password)
	assert.NoError(err)

	f.controller = radio.NewController(f.driver, radio.DefaultLoRaConfiguration(), radio.DefaultFSKConfiguration(), radio.DefaultAlternativeSpreadingFactor)
	f.sender = NewSender(f.controller, f.eeprom, f.gate)
	return f
}

func TestSend(t *testing.T) {
	t.Run("plaintext", func(t *testing.T) {
		assert := require.New(t)
		f := setup(t)

		assert.NoError(f.sender.Send(f.ctx, fcp.RespPong, nil, false, false))
		tx := <-f.driver.TXChan
		assert.Equal(append([]byte(test.Callsign), byte(fcp.RespPong)), tx.Frame)
		assert.Equal(radio.ModemLoRa, tx.Configuration.Modem)
	})

	t.Run("encrypted with modem override", func(t *testing.T) {
		assert := require.New(t)
		f := setup(t)
		assert.NoError(f.controller.SetModem(f.ctx, radio.ModemFSK))

		assert.NoError(f.sender.Send(f.ctx, fcp.RespDeploymentState, []byte{3}, true, true))
		tx := <-f.driver.TXChan
		assert.Equal(radio.ModemLoRa, tx.Configuration.Modem)
		assert.Equal(f.gate.FrameLength(test.Callsign, 1), len(tx.Frame))

		optData, err := f.gate.OptData(test.Callsign, tx.Frame)
		assert.NoError(err)
		assert.Equal([]byte{3}, optData)
	})

	t.Run("transmission disabled", func(t *testing.T) {
		assert := require.New(t)
		f := setup(t)
		assert.NoError(f.eeprom.UpdatePowerConfig(f.ctx, func(pc *storage.PowerConfig) {
			pc.TransmitEnabled = false
		}))

		assert.NoError(f.sender.Send(f.ctx, fcp.RespPong, nil, false, false))
		assert.NoError(f.sender.SendRaw(f.ctx, []byte{1, 2, 3}))
		assert.Len(f.driver.TXChan, 0)
	})

	t.Run("transmit error", func(t *testing.T) {
		assert := require.New(t)
		f := setup(t)
		f.driver.TransmitErr = errors.New("tx timeout")

		assert.Error(f.sender.Send(f.ctx, fcp.RespPong, nil, false, false))
	})
}

func TestSendCustom(t *testing.T) {
	assert := require.New(t)
	f := setup(t)

	lora := radio.DefaultLoRaConfiguration()
	lora.SpreadingFactor = 9
	assert.NoError(f.sender.SendCustom(f.ctx, lora, fcp.RespRepeatedMessageCustom, []byte("abc")))

	tx := <-f.driver.TXChan
	assert.Equal(lora, tx.Configuration.LoRa)
	assert.Equal(append(append([]byte(test.Callsign), byte(fcp.RespRepeatedMessageCustom)), "abc"...), tx.Frame)

	lora.Bandwidth = 3
	err := f.sender.SendCustom(f.ctx, lora, fcp.RespRepeatedMessageCustom, []byte("abc"))
	assert.Equal(radio.ErrInvalidConfiguration, errors.Cause(err))
	assert.Len(f.driver.TXChan, 0)
}

func TestSendRaw(t *testing.T) {
	assert := require.New(t)
	f := setup(t)

	assert.NoError(f.sender.SendRaw(f.ctx, []byte{0xde, 0xad}))
	tx := <-f.driver.TXChan
	assert.Equal([]byte{0xde, 0xad}, tx.Frame)

	err := f.sender.SendRaw(f.ctx, make([]byte, fcp.MaxRadioBufferLength+1))
	assert.Equal(fcp.ErrInvalidLength, errors.Cause(err))
}
