// Package platform defines the hardware collaborators of the command engine:
// the telemetry sensors, the deployment actuator and the watchdog.
package platform

import (
	"context"
	"time"
)

// SolarCell identifies one of the solar cells.
type SolarCell int

// Solar cells.
const (
	CellA SolarCell = iota
	CellB
	CellC
)

// NumSolarCells holds the number of solar cells.
const NumSolarCells = 3

func (c SolarCell) String() string {
	return string(rune('A' + int(c)))
}

// Sensors provides the telemetry readings in SI units.
type Sensors interface {
	ChargingVoltage() float64             // V
	ChargingCurrent() float64             // A
	BatteryVoltage() float64              // V
	SolarCellVoltage(c SolarCell) float64 // V
	BatteryTemperature() float64          // deg C
	BoardTemperature() float64            // deg C
	MCUTemperature() float64              // deg C
}

// Deployer runs the deployment sequence.
type Deployer interface {
	// Deploy runs the deployment sequence and increments the stored
	// deployment counter.
	Deploy(ctx context.Context) error
}

// Watchdog defines the external watchdog.
type Watchdog interface {
	// Heartbeat pets the watchdog.
	Heartbeat()

	// Restart lets the watchdog restart the satellite.
	Restart()
}

// Delay waits d while petting the watchdog every heartbeat period. It
// returns early with the context error when ctx is done.
func Delay(ctx context.Context, wd Watchdog, d, heartbeat time.Duration) error {
	if heartbeat <= 0 {
		heartbeat = time.Second
	}

	wd.Heartbeat()
	deadline := time.Now().Add(d)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		if remaining > heartbeat {
			remaining = heartbeat
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(remaining):
			wd.Heartbeat()
		}
	}
}
