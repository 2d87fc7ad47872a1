// Package sim implements the platform collaborators in software, for running
// the command engine on the ground against a radio bridge.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/config"
	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

// Sensors returns the configured readings with optional uniform noise.
type Sensors struct {
	mu   sync.Mutex
	rand *rand.Rand

	noise  float64
	values struct {
		chargingVoltage    float64
		chargingCurrent    float64
		batteryVoltage     float64
		cells              [platform.NumSolarCells]float64
		batteryTemperature float64
		boardTemperature   float64
		mcuTemperature     float64
	}
}

// NewSensors creates the simulated sensors from the configuration.
func NewSensors(c config.Config) *Sensors {
	sc := c.Satellite.Simulator

	s := Sensors{
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		noise: sc.Noise,
	}
	s.values.chargingVoltage = sc.ChargingVoltage
	s.values.chargingCurrent = sc.ChargingCurrent
	s.values.batteryVoltage = sc.BatteryVoltage
	s.values.cells = [platform.NumSolarCells]float64{sc.CellAVoltage, sc.CellBVoltage, sc.CellCVoltage}
	s.values.batteryTemperature = sc.BatteryTemperature
	s.values.boardTemperature = sc.BoardTemperature
	s.values.mcuTemperature = sc.MCUTemperature

	return &s
}

func (s *Sensors) read(v float64) float64 {
	if s.noise == 0 {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return v + (s.rand.Float64()*2-1)*s.noise
}

// ChargingVoltage implements platform.Sensors.
func (s *Sensors) ChargingVoltage() float64 { return s.read(s.values.chargingVoltage) }

// ChargingCurrent implements platform.Sensors.
func (s *Sensors) ChargingCurrent() float64 { return s.read(s.values.chargingCurrent) }

// BatteryVoltage implements platform.Sensors.
func (s *Sensors) BatteryVoltage() float64 { return s.read(s.values.batteryVoltage) }

// BatteryTemperature implements platform.Sensors.
func (s *Sensors) BatteryTemperature() float64 { return s.read(s.values.batteryTemperature) }

// BoardTemperature implements platform.Sensors.
func (s *Sensors) BoardTemperature() float64 { return s.read(s.values.boardTemperature) }

// MCUTemperature implements platform.Sensors.
func (s *Sensors) MCUTemperature() float64 { return s.read(s.values.mcuTemperature) }

// SolarCellVoltage implements platform.Sensors.
func (s *Sensors) SolarCellVoltage(c platform.SolarCell) float64 {
	if c < 0 || int(c) >= platform.NumSolarCells {
		return 0
	}
	return s.read(s.values.cells[c])
}

// Deployer counts deployments without driving an actuator.
type Deployer struct {
	eeprom   *storage.EEPROM
	duration time.Duration
}

// NewDeployer creates a Deployer. Each deployment takes the given duration.
func NewDeployer(e *storage.EEPROM, duration time.Duration) *Deployer {
	return &Deployer{
		eeprom:   e,
		duration: duration,
	}
}

// Deploy implements platform.Deployer.
func (d *Deployer) Deploy(ctx context.Context) error {
	log.WithField("duration", d.duration).Info("sim: running deployment sequence")

	if d.duration > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.duration):
		}
	}

	if err := d.eeprom.IncrementDeploymentCounter(ctx); err != nil {
		return errors.Wrap(err, "increment deployment counter error")
	}
	return nil
}

// Watchdog tracks heartbeats. Restart closes the channel returned by Done,
// which ends the process loop.
type Watchdog struct {
	heartbeats atomic.Uint64
	once       sync.Once
	done       chan struct{}
}

// NewWatchdog creates a Watchdog.
func NewWatchdog() *Watchdog {
	return &Watchdog{
		done: make(chan struct{}),
	}
}

// Heartbeat implements platform.Watchdog.
func (w *Watchdog) Heartbeat() {
	w.heartbeats.Add(1)
}

// Heartbeats returns the number of heartbeats.
func (w *Watchdog) Heartbeats() uint64 {
	return w.heartbeats.Load()
}

// Restart implements platform.Watchdog.
func (w *Watchdog) Restart() {
	w.once.Do(func() {
		log.Warning("sim: watchdog restart requested")
		close(w.done)
	})
}

// Done is closed after Restart.
func (w *Watchdog) Done() <-chan struct{} {
	return w.done
}
