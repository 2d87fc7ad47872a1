package command

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/logging"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

// DefaultFSKReceiveWindow is the FSK receive window (seconds) restored when
// both windows are set to zero.
const DefaultFSKReceiveWindow uint8 = 20

func (d *Dispatcher) handleDeploy(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 0); err != nil {
		return err
	}

	if err := d.deployer.Deploy(ctx); err != nil {
		return errors.Wrap(err, "deploy error")
	}

	counter, err := d.eeprom.DeploymentCounter(ctx)
	if err != nil {
		return errors.Wrap(err, "get deployment counter error")
	}

	return d.sender.Send(ctx, fcp.RespDeploymentState, []byte{counter}, true, false)
}

func (d *Dispatcher) handleRestart(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 0); err != nil {
		return err
	}

	log.WithField("ctx_id", ctx.Value(logging.ContextIDKey)).Warning("command: restart requested")
	d.watchdog.Restart()
	return nil
}

func (d *Dispatcher) handleWipeEEPROM(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 0); err != nil {
		return err
	}
	return d.eeprom.Wipe(ctx)
}

func (d *Dispatcher) handleSetTransmitEnable(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 1); err != nil {
		return err
	}
	return d.eeprom.UpdatePowerConfig(ctx, func(pc *storage.PowerConfig) {
		pc.TransmitEnabled = optData[0] != 0
	})
}

func (d *Dispatcher) handleSetCallsign(ctx context.Context, optData []byte) error {
	if err := expectLengthRange(optData, 1, fcp.MaxStringLength-1); err != nil {
		return err
	}

	callsign := string(optData)
	if err := d.eeprom.SetCallsign(ctx, callsign); err != nil {
		return errors.Wrap(err, "set callsign error")
	}

	log.WithFields(log.Fields{
		"callsign": callsign,
		"ctx_id":   ctx.Value(logging.ContextIDKey),
	}).Info("command: callsign updated")
	return nil
}

func (d *Dispatcher) handleSetSpreadingFactorMode(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 1); err != nil {
		return err
	}

	mode := radio.SpreadingFactorMode(optData[0])
	if mode > radio.SpreadingFactorAlternative {
		return errors.Wrapf(ErrInvalidValue, "spreading factor mode %d", optData[0])
	}

	err := d.radio.SetSpreadingFactorMode(ctx, mode)
	switch errors.Cause(err) {
	case nil:
		return nil
	case radio.ErrWrongModem:
		// stored, applied on the next switch to LoRa
		log.WithFields(log.Fields{
			"sf_mode": mode,
			"modem":   d.radio.Modem(),
			"ctx_id":  ctx.Value(logging.ContextIDKey),
		}).Debug("command: spreading factor mode deferred")
		return nil
	default:
		return errors.Wrap(err, "set spreading factor mode error")
	}
}

func (d *Dispatcher) handleSetMPPTMode(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 2); err != nil {
		return err
	}
	return d.eeprom.UpdatePowerConfig(ctx, func(pc *storage.PowerConfig) {
		pc.MPPTTempSwitchEnabled = optData[0] != 0
		pc.MPPTKeepAliveEnabled = optData[1] != 0
	})
}

func (d *Dispatcher) handleSetLowPowerEnable(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 1); err != nil {
		return err
	}
	return d.eeprom.UpdatePowerConfig(ctx, func(pc *storage.PowerConfig) {
		pc.LowPowerModeEnabled = optData[0] != 0
	})
}

func (d *Dispatcher) handleSetReceiveWindows(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 2); err != nil {
		return err
	}

	fsk, lora := optData[0], optData[1]
	if fsk == 0 && lora == 0 {
		log.WithField("fsk_rx_len", DefaultFSKReceiveWindow).Warning("command: both receive windows disabled, restoring fsk window")
		fsk = DefaultFSKReceiveWindow
	}

	return d.eeprom.SetReceiveWindows(ctx, fsk, lora)
}
