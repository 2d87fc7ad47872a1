package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fossasystems/fossasat-fcp/internal/config"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

var printEEPROMCmd = &cobra.Command{
	Use:     "print-eeprom",
	Short:   "Print the stored variables as JSON",
	Example: `fossasat-fcp print-eeprom --config fossasat-fcp.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := storage.Setup(config.C)
		if err != nil {
			return errors.Wrap(err, "setup storage error")
		}

		dump, err := readEEPROM(context.Background(), e)
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(dump, "", "    ")
		if err != nil {
			return errors.Wrap(err, "json marshal error")
		}

		fmt.Println(string(b))
		return nil
	},
}

type eepromDump struct {
	Callsign          string                `json:"callsign"`
	DeploymentCounter uint8                 `json:"deploymentCounter"`
	RestartCounter    uint16                `json:"restartCounter"`
	Uptime            uint32                `json:"uptime"`
	FSKReceiveWindow  uint8                 `json:"fskReceiveWindow"`
	LoRaReceiveWindow uint8                 `json:"loraReceiveWindow"`
	PowerConfig       storage.PowerConfig   `json:"powerConfig"`
	FrameCounters     storage.FrameCounters `json:"frameCounters"`
	Stats             storage.Stats         `json:"stats"`
}

func readEEPROM(ctx context.Context, e *storage.EEPROM) (eepromDump, error) {
	var d eepromDump
	var err error

	if d.Callsign, err = e.Callsign(ctx); err != nil {
		return d, errors.Wrap(err, "get callsign error")
	}
	if d.DeploymentCounter, err = e.DeploymentCounter(ctx); err != nil {
		return d, errors.Wrap(err, "get deployment counter error")
	}
	if d.RestartCounter, err = e.RestartCounter(ctx); err != nil {
		return d, errors.Wrap(err, "get restart counter error")
	}
	if d.Uptime, err = e.Uptime(ctx); err != nil {
		return d, errors.Wrap(err, "get uptime error")
	}
	if d.FSKReceiveWindow, d.LoRaReceiveWindow, err = e.ReceiveWindows(ctx); err != nil {
		return d, errors.Wrap(err, "get receive windows error")
	}
	if d.PowerConfig, err = e.PowerConfig(ctx); err != nil {
		return d, errors.Wrap(err, "get power config error")
	}
	if d.FrameCounters, err = e.FrameCounters(ctx); err != nil {
		return d, errors.Wrap(err, "get frame counters error")
	}
	if d.Stats, err = e.Stats(ctx); err != nil {
		return d, errors.Wrap(err, "get stats error")
	}

	return d, nil
}
