package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fossasystems/fossasat-fcp/internal/config"
	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

func TestSensors(t *testing.T) {
	assert := require.New(t)

	var c config.Config
	c.Satellite.Simulator.BatteryVoltage = 4.02
	c.Satellite.Simulator.CellBVoltage = 1.5
	c.Satellite.Simulator.MCUTemperature = 21

	s := NewSensors(c)
	assert.Equal(4.02, s.BatteryVoltage())
	assert.Equal(1.5, s.SolarCellVoltage(platform.CellB))
	assert.Equal(0.0, s.SolarCellVoltage(platform.SolarCell(5)))
	assert.Equal(21.0, s.MCUTemperature())

	c.Satellite.Simulator.Noise = 0.1
	s = NewSensors(c)
	for i := 0; i < 100; i++ {
		v := s.BatteryVoltage()
		assert.True(v >= 3.92 && v <= 4.12, "%f out of range", v)
	}
}

func TestDeployer(t *testing.T) {
	assert := require.New(t)
	ctx := context.Background()

	e := storage.NewEEPROM(storage.NewMemoryStore(storage.EEPROMSize), storage.Defaults{
		Callsign:          "FOSSASAT-1B",
		FSKReceiveWindow:  20,
		LoRaReceiveWindow: 40,
	})
	assert.NoError(e.Wipe(ctx))

	d := NewDeployer(e, time.Millisecond)
	assert.NoError(d.Deploy(ctx))
	assert.NoError(d.Deploy(ctx))

	n, err := e.DeploymentCounter(ctx)
	assert.NoError(err)
	assert.Equal(uint8(2), n)
}

func TestWatchdog(t *testing.T) {
	assert := require.New(t)
	wd := NewWatchdog()

	wd.Heartbeat()
	wd.Heartbeat()
	assert.Equal(uint64(2), wd.Heartbeats())

	select {
	case <-wd.Done():
		t.Fatal("done before restart")
	default:
	}

	wd.Restart()
	wd.Restart()
	<-wd.Done()
}
