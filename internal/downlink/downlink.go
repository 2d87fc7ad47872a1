// Package downlink frames responses and hands them to the radio.
package downlink

import (
	"context"
	"encoding/hex"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/logging"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

// Sender encodes responses with the stored callsign and transmits them when
// transmission is enabled in the power configuration.
type Sender struct {
	controller *radio.Controller
	eeprom     *storage.EEPROM
	gate       *fcp.Gate
}

// NewSender creates a Sender. The gate is used for encrypted responses.
func NewSender(c *radio.Controller, e *storage.EEPROM, g *fcp.Gate) *Sender {
	return &Sender{
		controller: c,
		eeprom:     e,
		gate:       g,
	}
}

// Send encodes and transmits a response. When encrypt is set the optional
// data is sealed with the gate. When overrideModem is set the response is
// sent using LoRa regardless of the active modem.
func (s *Sender) Send(ctx context.Context, id fcp.FunctionID, optData []byte, encrypt, overrideModem bool) error {
	frame, err := s.encode(ctx, id, optData, encrypt)
	if err != nil {
		return err
	}

	return s.transmit(ctx, id, frame, func() error {
		return s.controller.Transmit(ctx, frame, overrideModem)
	})
}

// SendCustom encodes a plaintext response and transmits it using the given
// LoRa configuration.
func (s *Sender) SendCustom(ctx context.Context, lora radio.LoRaConfiguration, id fcp.FunctionID, optData []byte) error {
	frame, err := s.encode(ctx, id, optData, false)
	if err != nil {
		return err
	}

	return s.transmit(ctx, id, frame, func() error {
		return s.controller.TransmitCustom(ctx, lora, frame)
	})
}

// SendRaw transmits data without framing.
func (s *Sender) SendRaw(ctx context.Context, data []byte) error {
	if len(data) > fcp.MaxRadioBufferLength {
		return errors.Wrapf(fcp.ErrInvalidLength, "raw frame of %d bytes", len(data))
	}

	return s.transmit(ctx, "raw", data, func() error {
		return s.controller.Transmit(ctx, data, false)
	})
}

func (s *Sender) encode(ctx context.Context, id fcp.FunctionID, optData []byte, encrypt bool) ([]byte, error) {
	callsign, err := s.eeprom.Callsign(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get callsign error")
	}

	out := make([]byte, fcp.MaxRadioBufferLength)
	var n int
	if encrypt {
		if s.gate == nil {
			return nil, fcp.ErrGateRequired
		}
		n, err = s.gate.Encode(out, callsign, id, optData)
	} else {
		n, err = fcp.Encode(out, callsign, id, optData)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s error", id)
	}

	return out[:n], nil
}

func (s *Sender) transmit(ctx context.Context, label interface{}, frame []byte, send func() error) error {
	pc, err := s.eeprom.PowerConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "get power config error")
	}

	fields := log.Fields{
		"ctx_id":   logging.ContextID(ctx),
		"response": label,
		"modem":    s.controller.Modem(),
		"length":   len(frame),
	}

	if !pc.TransmitEnabled {
		downlinkSuppressedCounter().Inc()
		log.WithFields(fields).Info("downlink: transmission disabled, dropping response")
		return nil
	}

	if err := send(); err != nil {
		downlinkErrorCounter().Inc()
		return err
	}

	downlinkFrameCounter(label).Inc()
	fields["data_hex"] = hex.EncodeToString(frame)
	log.WithFields(fields).Info("downlink: response transmitted")
	return nil
}
