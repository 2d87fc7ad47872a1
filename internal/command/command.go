// Package command implements the handlers of the frame command protocol.
// Each handler validates the optional data length before reading any field;
// a rejected command mutates nothing and transmits nothing.
package command

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/downlink"
	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/logging"
	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

// errors
var (
	ErrUnknownFunctionID = errors.New("unknown function id")
	ErrOptDataLength     = errors.New("unexpected optional data length")
	ErrInvalidValue      = errors.New("invalid value")
	ErrConfiguration     = errors.New("modem configuration rejected")
)

// Dependencies holds the collaborators of the command handlers.
type Dependencies struct {
	EEPROM   *storage.EEPROM
	Radio    *radio.Controller
	Sender   *downlink.Sender
	Sensors  platform.Sensors
	Deployer platform.Deployer
	Watchdog platform.Watchdog

	// WatchdogHeartbeat is the heartbeat period used during long running
	// commands.
	WatchdogHeartbeat time.Duration
}

// Dispatcher executes commands.
type Dispatcher struct {
	eeprom    *storage.EEPROM
	radio     *radio.Controller
	sender    *downlink.Sender
	sensors   platform.Sensors
	deployer  platform.Deployer
	watchdog  platform.Watchdog
	heartbeat time.Duration
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(d Dependencies) *Dispatcher {
	return &Dispatcher{
		eeprom:    d.EEPROM,
		radio:     d.Radio,
		sender:    d.Sender,
		sensors:   d.Sensors,
		deployer:  d.Deployer,
		watchdog:  d.Watchdog,
		heartbeat: d.WatchdogHeartbeat,
	}
}

// Handle executes the command with the given function ID and optional data.
func (d *Dispatcher) Handle(ctx context.Context, id fcp.FunctionID, optData []byte) error {
	err := d.handle(ctx, id, optData)

	result := "ok"
	if err != nil {
		result = resultLabel(err)
	}
	commandCounter(id, result).Inc()

	if err != nil {
		return errors.Wrapf(err, "handle %s error", id)
	}

	log.WithFields(log.Fields{
		"function_id":  id,
		"opt_data_len": len(optData),
		"ctx_id":       ctx.Value(logging.ContextIDKey),
	}).Info("command: executed")
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, id fcp.FunctionID, optData []byte) error {
	switch id {
	case fcp.CmdPing:
		return d.handlePing(ctx, optData)
	case fcp.CmdRetransmit:
		return d.handleRetransmit(ctx, optData)
	case fcp.CmdRetransmitCustom:
		return d.handleRetransmitCustom(ctx, optData)
	case fcp.CmdTransmitSystemInfo:
		return d.handleTransmitSystemInfo(ctx, optData)
	case fcp.CmdGetPacketInfo:
		return d.handleGetPacketInfo(ctx, optData)
	case fcp.CmdGetStatistics:
		return d.handleGetStatistics(ctx, optData)
	case fcp.CmdDeploy:
		return d.handleDeploy(ctx, optData)
	case fcp.CmdRestart:
		return d.handleRestart(ctx, optData)
	case fcp.CmdWipeEEPROM:
		return d.handleWipeEEPROM(ctx, optData)
	case fcp.CmdSetTransmitEnable:
		return d.handleSetTransmitEnable(ctx, optData)
	case fcp.CmdSetCallsign:
		return d.handleSetCallsign(ctx, optData)
	case fcp.CmdSetSpreadingFactorMode:
		return d.handleSetSpreadingFactorMode(ctx, optData)
	case fcp.CmdSetMPPTMode:
		return d.handleSetMPPTMode(ctx, optData)
	case fcp.CmdSetLowPowerEnable:
		return d.handleSetLowPowerEnable(ctx, optData)
	case fcp.CmdSetReceiveWindows:
		return d.handleSetReceiveWindows(ctx, optData)
	case fcp.CmdRecordSolarCells:
		return d.handleRecordSolarCells(ctx, optData)
	case fcp.CmdRoute:
		return d.handleRoute(ctx, optData)
	default:
		return ErrUnknownFunctionID
	}
}

func expectLength(optData []byte, n int) error {
	if len(optData) != n {
		return errors.Wrapf(ErrOptDataLength, "expected %d bytes, got %d", n, len(optData))
	}
	return nil
}

func expectLengthRange(optData []byte, min, max int) error {
	if len(optData) < min || len(optData) > max {
		return errors.Wrapf(ErrOptDataLength, "expected %d..%d bytes, got %d", min, max, len(optData))
	}
	return nil
}

func resultLabel(err error) string {
	switch errors.Cause(err) {
	case ErrUnknownFunctionID:
		return "unknown_function_id"
	case ErrOptDataLength:
		return "opt_data_length"
	case ErrInvalidValue:
		return "invalid_value"
	case ErrConfiguration:
		return "configuration"
	default:
		return "error"
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
