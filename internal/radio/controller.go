package radio

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Controller keeps track of the active modem and the spreading factor mode
// and applies them to the driver.
//
// A driver returns to the last configuration passed to Configure after every
// transmission, so transmitting with a different configuration never changes
// the receive settings.
type Controller struct {
	driver Driver

	lora          LoRaConfiguration
	fsk           FSKConfiguration
	alternativeSF uint8

	modem  Modem
	sfMode SpreadingFactorMode
}

// NewController creates a Controller. The LoRa configuration holds the
// standard spreading factor, alternativeSF is used in the alternative mode.
func NewController(d Driver, lora LoRaConfiguration, fsk FSKConfiguration, alternativeSF uint8) *Controller {
	return &Controller{
		driver:        d,
		lora:          lora,
		fsk:           fsk,
		alternativeSF: alternativeSF,
		modem:         ModemLoRa,
	}
}

// Driver returns the underlying driver.
func (c *Controller) Driver() Driver {
	return c.driver
}

// Modem returns the active modem.
func (c *Controller) Modem() Modem {
	return c.modem
}

// SpreadingFactorMode returns the spreading factor mode.
func (c *Controller) SpreadingFactorMode() SpreadingFactorMode {
	return c.sfMode
}

// LoRa returns the LoRa configuration with the spreading factor mode applied.
func (c *Controller) LoRa() LoRaConfiguration {
	lora := c.lora
	if c.sfMode == SpreadingFactorAlternative {
		lora.SpreadingFactor = c.alternativeSF
	}
	return lora
}

// Configuration returns the configuration of the active modem.
func (c *Controller) Configuration() Configuration {
	return c.configuration(c.modem)
}

func (c *Controller) configuration(m Modem) Configuration {
	return Configuration{
		Modem: m,
		LoRa:  c.LoRa(),
		FSK:   c.fsk,
	}
}

// SetModem switches the transceiver to the given modem.
func (c *Controller) SetModem(ctx context.Context, m Modem) error {
	conf := c.configuration(m)
	if err := conf.Validate(); err != nil {
		return err
	}

	if err := c.driver.Configure(ctx, conf); err != nil {
		return errors.Wrap(err, "configure driver error")
	}

	if c.modem != m {
		log.WithFields(log.Fields{
			"modem":    m,
			"previous": c.modem,
		}).Debug("radio: modem changed")
	}
	c.modem = m
	return nil
}

// SetSpreadingFactorMode stores the spreading factor mode and applies it when
// LoRa is active. ErrWrongModem is returned when FSK is active, the mode is
// then applied on the next switch to LoRa.
func (c *Controller) SetSpreadingFactorMode(ctx context.Context, mode SpreadingFactorMode) error {
	if mode > SpreadingFactorAlternative {
		return errors.Wrapf(ErrInvalidConfiguration, "spreading factor mode %d", mode)
	}

	c.sfMode = mode
	if c.modem != ModemLoRa {
		return ErrWrongModem
	}

	if err := c.driver.Configure(ctx, c.Configuration()); err != nil {
		return errors.Wrap(err, "configure driver error")
	}
	return nil
}

// Transmit sends the frame using the active modem. When overrideModem is set
// the frame is always sent using LoRa.
func (c *Controller) Transmit(ctx context.Context, frame []byte, overrideModem bool) error {
	conf := c.Configuration()
	if overrideModem {
		conf = c.configuration(ModemLoRa)
	}

	if err := c.driver.Transmit(ctx, conf, frame); err != nil {
		return errors.Wrap(err, "transmit error")
	}
	return nil
}

// TransmitCustom sends the frame using the given LoRa configuration. An
// invalid configuration is rejected before the driver is called.
func (c *Controller) TransmitCustom(ctx context.Context, lora LoRaConfiguration, frame []byte) error {
	if err := lora.Validate(); err != nil {
		return err
	}

	conf := Configuration{
		Modem: ModemLoRa,
		LoRa:  lora,
		FSK:   c.fsk,
	}
	if err := c.driver.Transmit(ctx, conf, frame); err != nil {
		return errors.Wrap(err, "transmit error")
	}
	return nil
}

// PacketInfo returns the signal quality of the last received frame.
func (c *Controller) PacketInfo() PacketInfo {
	return c.driver.PacketInfo()
}
