// Package test provides the test configuration and test doubles of the
// external collaborators.
package test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/brocaar/lorawan"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// Callsign holds the callsign used in tests.
const Callsign = "FOSSASAT-1B"

// Password holds the password used in tests.
const Password = "password"

// Key holds the AES key used in tests.
var Key = lorawan.AES128Key{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x00}

// Config contains the test configuration.
type Config struct {
	RedisURL   string
	MQTTServer string
	AMQPURL    string
}

// GetConfig returns the test configuration. Empty values disable the tests
// depending on them.
func GetConfig() *Config {
	log.SetLevel(log.ErrorLevel)

	return &Config{
		RedisURL:   os.Getenv("TEST_REDIS_URL"),
		MQTTServer: os.Getenv("TEST_MQTT_SERVER"),
		AMQPURL:    os.Getenv("TEST_AMQP_URL"),
	}
}

// Transmission holds a frame passed to the radio driver.
type Transmission struct {
	Configuration radio.Configuration
	Frame         []byte
}

// RadioDriver is a test radio driver.
type RadioDriver struct {
	mu         sync.Mutex
	configured []radio.Configuration

	TXChan      chan Transmission
	TransmitErr error
	Info        radio.PacketInfo
}

// NewRadioDriver returns a new RadioDriver.
func NewRadioDriver() *RadioDriver {
	return &RadioDriver{
		TXChan: make(chan Transmission, 100),
	}
}

// Configure method.
func (d *RadioDriver) Configure(ctx context.Context, c radio.Configuration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configured = append(d.configured, c)
	return nil
}

// Transmit method.
func (d *RadioDriver) Transmit(ctx context.Context, c radio.Configuration, frame []byte) error {
	if d.TransmitErr != nil {
		return d.TransmitErr
	}

	b := make([]byte, len(frame))
	copy(b, frame)
	d.TXChan <- Transmission{Configuration: c, Frame: b}
	return nil
}

// PacketInfo method.
func (d *RadioDriver) PacketInfo() radio.PacketInfo {
	return d.Info
}

// Configured returns the configurations passed to Configure.
func (d *RadioDriver) Configured() []radio.Configuration {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]radio.Configuration, len(d.configured))
	copy(out, d.configured)
	return out
}

// Sensors is a test sensor provider returning fixed readings.
type Sensors struct {
	ChargingVoltageValue    float64
	ChargingCurrentValue    float64
	BatteryVoltageValue     float64
	CellVoltages            [platform.NumSolarCells]float64
	BatteryTemperatureValue float64
	BoardTemperatureValue   float64
	MCUTemperatureValue     float64
}

// ChargingVoltage method.
func (s *Sensors) ChargingVoltage() float64 { return s.ChargingVoltageValue }

// ChargingCurrent method.
func (s *Sensors) ChargingCurrent() float64 { return s.ChargingCurrentValue }

// BatteryVoltage method.
func (s *Sensors) BatteryVoltage() float64 { return s.BatteryVoltageValue }

// SolarCellVoltage method.
func (s *Sensors) SolarCellVoltage(c platform.SolarCell) float64 { return s.CellVoltages[c] }

// BatteryTemperature method.
func (s *Sensors) BatteryTemperature() float64 { return s.BatteryTemperatureValue }

// BoardTemperature method.
func (s *Sensors) BoardTemperature() float64 { return s.BoardTemperatureValue }

// MCUTemperature method.
func (s *Sensors) MCUTemperature() float64 { return s.MCUTemperatureValue }

// Deployer is a test deployer. OnDeploy, when set, is called on every
// deployment.
type Deployer struct {
	Deployments int
	OnDeploy    func(ctx context.Context) error
}

// Deploy method.
func (d *Deployer) Deploy(ctx context.Context) error {
	d.Deployments++
	if d.OnDeploy != nil {
		return d.OnDeploy(ctx)
	}
	return nil
}

// Watchdog is a test watchdog.
type Watchdog struct {
	heartbeats atomic.Int64
	restarts   atomic.Int64
}

// Heartbeat method.
func (w *Watchdog) Heartbeat() {
	w.heartbeats.Add(1)
}

// Restart method.
func (w *Watchdog) Restart() {
	w.restarts.Add(1)
}

// Heartbeats returns the number of heartbeats.
func (w *Watchdog) Heartbeats() int {
	return int(w.heartbeats.Load())
}

// Restarts returns the number of restarts.
func (w *Watchdog) Restarts() int {
	return int(w.restarts.Load())
}
