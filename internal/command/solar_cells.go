package command

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/response"
)

// MaxSolarCellSamples holds the maximum number of samples in a single
// recording, each sample holds one voltage per cell.
const MaxSolarCellSamples = fcp.MaxOptDataLength / platform.NumSolarCells

// handleRecordSolarCells samples the solar cell voltages:
//
//	[0] number of samples  [1:3] sampling period in ms (LE)
func (d *Dispatcher) handleRecordSolarCells(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 3); err != nil {
		return err
	}

	n := int(optData[0])
	if n == 0 || n > MaxSolarCellSamples {
		return errors.Wrapf(ErrInvalidValue, "%d samples", n)
	}
	period := time.Duration(binary.LittleEndian.Uint16(optData[1:3])) * time.Millisecond

	b := response.NewBuilder(n * platform.NumSolarCells)
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := platform.Delay(ctx, d.watchdog, period, d.heartbeat); err != nil {
				return errors.Wrap(err, "sampling delay error")
			}
		}

		for c := platform.CellA; c <= platform.CellC; c++ {
			if err := response.Add(b, response.Voltage(d.sensors.SolarCellVoltage(c))); err != nil {
				return errors.Wrap(err, "build solar cells error")
			}
		}
	}

	return d.sender.Send(ctx, fcp.RespRecordedSolarCells, b.Bytes(), false, false)
}
