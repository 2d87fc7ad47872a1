package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fossasystems/fossasat-fcp/internal/backend/bridge"
	"github.com/fossasystems/fossasat-fcp/internal/command"
	"github.com/fossasystems/fossasat-fcp/internal/config"
	"github.com/fossasystems/fossasat-fcp/internal/downlink"
	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/monitoring"
	"github.com/fossasystems/fossasat-fcp/internal/platform/sim"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
	"github.com/fossasystems/fossasat-fcp/internal/uplink"
)

// satellite holds the components created by the run tasks.
type satellite struct {
	eeprom     *storage.EEPROM
	bridge     bridge.Bridge
	driver     *bridge.Driver
	latch      *radio.Latch
	controller *radio.Controller
	gate       *fcp.Gate
	watchdog   *sim.Watchdog
	server     *uplink.Server
}

func run(cmd *cobra.Command, args []string) error {
	var sat satellite

	tasks := []func() error{
		setLogLevel,
		setSyslog,
		printStartMessage,
		setupStorage(&sat),
		setupBridge(&sat),
		setupRadio(&sat),
		setupGate(&sat),
		setupMonitoring(&sat),
		startUplink(&sat),
	}

	for _, t := range tasks {
		if err := t(); err != nil {
			log.Fatal(err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	exitChan := make(chan struct{})
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-sigChan:
		log.WithField("signal", s).Info("signal received")
	case <-sat.watchdog.Done():
		log.Info("restart requested")
	}

	go func() {
		log.Warning("stopping fossasat-fcp")
		if err := sat.server.Stop(); err != nil {
			log.Fatal(err)
		}
		if err := sat.bridge.Close(); err != nil {
			log.Fatal(err)
		}
		sat.driver.Wait()
		exitChan <- struct{}{}
	}()
	select {
	case <-exitChan:
	case s := <-sigChan:
		log.WithField("signal", s).Info("signal received, stopping immediately")
	}

	return nil
}

func setLogLevel() error {
	log.SetLevel(log.Level(uint8(config.C.General.LogLevel)))
	return nil
}

func printStartMessage() error {
	log.WithFields(log.Fields{
		"version":   version,
		"satellite": config.C.Satellite.ID,
		"callsign":  config.C.Satellite.Callsign,
	}).Info("starting fossasat-fcp")
	return nil
}

func setupStorage(sat *satellite) func() error {
	return func() error {
		var err error
		sat.eeprom, err = storage.Setup(config.C)
		if err != nil {
			return errors.Wrap(err, "setup storage error")
		}

		ctx := context.Background()
		if _, err := sat.eeprom.Init(ctx); err != nil {
			return errors.Wrap(err, "init eeprom error")
		}
		if err := sat.eeprom.IncrementRestartCounter(ctx); err != nil {
			return errors.Wrap(err, "increment restart counter error")
		}
		return nil
	}
}

func setupBridge(sat *satellite) func() error {
	return func() error {
		var err error
		sat.bridge, err = bridge.Setup(config.C)
		if err != nil {
			return errors.Wrap(err, "setup bridge backend error")
		}

		sat.latch = radio.NewLatch()
		sat.driver = bridge.NewDriver(sat.bridge, config.C.Radio.Backend.ModemID, sat.latch)
		return nil
	}
}

func setupRadio(sat *satellite) func() error {
	return func() error {
		var err error
		sat.controller, err = radio.Setup(config.C, sat.driver)
		if err != nil {
			return errors.Wrap(err, "setup radio error")
		}
		return nil
	}
}

func setupGate(sat *satellite) func() error {
	return func() error {
		var err error
		sat.gate, err = fcp.NewGate(config.C.Satellite.Key, config.C.Satellite.Password)
		if err != nil {
			return errors.Wrap(err, "new gate error")
		}
		return nil
	}
}

func setupMonitoring(sat *satellite) func() error {
	return func() error {
		if err := monitoring.Setup(config.C, sat.eeprom.Store()); err != nil {
			return errors.Wrap(err, "setup monitoring error")
		}
		return nil
	}
}

func startUplink(sat *satellite) func() error {
	return func() error {
		sat.watchdog = sim.NewWatchdog()

		dispatcher := command.NewDispatcher(command.Dependencies{
			EEPROM:            sat.eeprom,
			Radio:             sat.controller,
			Sender:            downlink.NewSender(sat.controller, sat.eeprom, sat.gate),
			Sensors:           sim.NewSensors(config.C),
			Deployer:          sim.NewDeployer(sat.eeprom, config.C.Satellite.Simulator.DeploymentDuration),
			Watchdog:          sat.watchdog,
			WatchdogHeartbeat: config.C.Satellite.WatchdogHeartbeat,
		})

		sat.server = uplink.NewServer(uplink.Dependencies{
			Latch:             sat.latch,
			Radio:             sat.controller,
			EEPROM:            sat.eeprom,
			Gate:              sat.gate,
			Handler:           dispatcher,
			Watchdog:          sat.watchdog,
			ResponseDelay:     config.C.Satellite.ResponseDelay,
			WatchdogHeartbeat: config.C.Satellite.WatchdogHeartbeat,
		})

		if err := sat.server.Start(); err != nil {
			return errors.Wrap(err, "start uplink server error")
		}
		return nil
	}
}
