package command

import (
	"context"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
)

// handleRoute transmits the optional data as-is, turning the satellite into
// a digipeater.
func (d *Dispatcher) handleRoute(ctx context.Context, optData []byte) error {
	if err := expectLengthRange(optData, 1, fcp.MaxOptDataLength); err != nil {
		return err
	}
	return d.sender.SendRaw(ctx, optData)
}
