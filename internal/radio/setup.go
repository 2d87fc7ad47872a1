package radio

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/config"
)

// Setup validates the configured modem settings and returns a Controller
// driving d.
func Setup(c config.Config, d Driver) (*Controller, error) {
	lc := c.Satellite.LoRa
	lora := LoRaConfiguration{
		Frequency:       lc.Frequency,
		Bandwidth:       lc.Bandwidth,
		SpreadingFactor: lc.SpreadingFactor,
		CodingRate:      lc.CodingRate,
		SyncWord:        lc.SyncWord,
		Power:           lc.Power,
		CurrentLimit:    lc.CurrentLimit,
		PreambleLength:  lc.PreambleLength,
		CRC:             true,
	}

	fc := c.Satellite.FSK
	fsk := FSKConfiguration{
		Frequency:          fc.Frequency,
		BitRate:            fc.BitRate,
		FrequencyDeviation: fc.FrequencyDeviation,
		RXBandwidth:        fc.RXBandwidth,
		Power:              fc.Power,
		CurrentLimit:       fc.CurrentLimit,
		PreambleLength:     fc.PreambleLength,
		DataShaping:        fc.DataShaping,
	}

	if err := lora.Validate(); err != nil {
		return nil, errors.Wrap(err, "lora configuration error")
	}
	alt := lora
	alt.SpreadingFactor = lc.AlternativeSpreadingFactor
	if err := alt.Validate(); err != nil {
		return nil, errors.Wrap(err, "alternative spreading factor error")
	}
	if err := fsk.Validate(); err != nil {
		return nil, errors.Wrap(err, "fsk configuration error")
	}

	log.WithFields(log.Fields{
		"lora_frequency":   lora.Frequency,
		"spreading_factor": lora.SpreadingFactor,
		"fsk_frequency":    fsk.Frequency,
		"fsk_bit_rate":     fsk.BitRate,
	}).Info("radio: modem configuration loaded")

	return NewController(d, lora, fsk, lc.AlternativeSpreadingFactor), nil
}
