// Package uplink implements the receive loop: it alternates the FSK and LoRa
// receive windows and runs every received frame through decoding, command
// dispatch and bookkeeping.
package uplink

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/logging"
	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

// idleInterval is the wait before the receive windows are read again when
// both are disabled or could not be read.
const idleInterval = time.Second

// Handler executes a decoded command.
type Handler interface {
	Handle(ctx context.Context, id fcp.FunctionID, optData []byte) error
}

// Dependencies holds the collaborators of the Server.
type Dependencies struct {
	Latch    *radio.Latch
	Radio    *radio.Controller
	EEPROM   *storage.EEPROM
	Gate     *fcp.Gate
	Handler  Handler
	Watchdog platform.Watchdog

	ResponseDelay     time.Duration
	WatchdogHeartbeat time.Duration
}

// Server represents a server listening for received frames.
type Server struct {
	latch         *radio.Latch
	controller    *radio.Controller
	eeprom        *storage.EEPROM
	gate          *fcp.Gate
	handler       Handler
	watchdog      platform.Watchdog
	responseDelay time.Duration
	heartbeat     time.Duration

	// windowUnit is the duration of one unit of the stored window lengths.
	windowUnit time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a new server.
func NewServer(d Dependencies) *Server {
	heartbeat := d.WatchdogHeartbeat
	if heartbeat <= 0 {
		heartbeat = time.Second
	}

	return &Server{
		latch:         d.Latch,
		controller:    d.Radio,
		eeprom:        d.EEPROM,
		gate:          d.Gate,
		handler:       d.Handler,
		watchdog:      d.Watchdog,
		responseDelay: d.ResponseDelay,
		heartbeat:     heartbeat,
		windowUnit:    time.Second,
	}
}

// Start starts the receive loop.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
	return nil
}

// Stop stops the receive loop and waits for the frame being processed to
// complete.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	log.Info("uplink: waiting for pending actions to complete")
	s.wg.Wait()
	return nil
}

func (s *Server) run(ctx context.Context) {
	for ctx.Err() == nil {
		fsk, lora, err := s.eeprom.ReceiveWindows(ctx)
		if err != nil {
			log.WithError(err).Error("uplink: get receive windows error")
			s.idle(ctx)
			continue
		}

		if fsk == 0 && lora == 0 {
			s.idle(ctx)
			continue
		}

		s.window(ctx, radio.ModemFSK, fsk)
		s.window(ctx, radio.ModemLoRa, lora)
	}
}

func (s *Server) idle(ctx context.Context) {
	s.watchdog.Heartbeat()
	select {
	case <-ctx.Done():
	case <-time.After(idleInterval):
	}
}

// window listens on the given modem for the given number of window units.
// A zero length window is skipped.
func (s *Server) window(ctx context.Context, m radio.Modem, length uint8) {
	if length == 0 || ctx.Err() != nil {
		return
	}

	if err := s.controller.SetModem(ctx, m); err != nil {
		log.WithError(err).WithField("modem", m).Error("uplink: set modem error")
		s.idle(ctx)
		return
	}

	log.WithFields(log.Fields{
		"modem":  m,
		"length": length,
	}).Debug("uplink: receive window opened")

	start := time.Now()
	s.listen(ctx, time.Duration(length)*s.windowUnit)

	if err := s.eeprom.AddUptime(ctx, uint32(time.Since(start)/time.Second)); err != nil {
		log.WithError(err).Error("uplink: add uptime error")
	}
}

func (s *Server) listen(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case <-ticker.C:
			s.watchdog.Heartbeat()
		case f := <-s.latch.Frames():
			s.latch.Disable()
			s.HandleFrame(ctx, f)
			s.latch.Enable()
		}
	}
}

// HandleFrame decodes the received frame, executes the command and updates
// the frame counter of the modem the frame was received on. Errors are
// logged, a rejected frame is never answered.
func (s *Server) HandleFrame(ctx context.Context, f radio.RXFrame) {
	ctx, err := logging.NewContext(ctx)
	if err != nil {
		log.WithError(err).Error("uplink: new context error")
		ctx = context.Background()
	}

	err = s.handleFrame(ctx, f)
	s.count(ctx, f.Modem, err)

	if err != nil {
		log.WithFields(log.Fields{
			"ctx_id":   ctx.Value(logging.ContextIDKey),
			"modem":    f.Modem,
			"data_hex": hex.EncodeToString(f.Data),
		}).WithError(err).Error("uplink: processing frame error")
	}
}

func (s *Server) handleFrame(ctx context.Context, f radio.RXFrame) error {
	log.WithFields(log.Fields{
		"ctx_id": ctx.Value(logging.ContextIDKey),
		"modem":  f.Modem,
		"length": len(f.Data),
	}).Info("uplink: frame received")

	callsign, err := s.eeprom.Callsign(ctx)
	if err != nil {
		return errors.Wrap(err, "get callsign error")
	}

	frame, err := fcp.Decode(callsign, f.Data, s.gate)
	if err != nil {
		return errors.Wrap(err, "decode frame error")
	}

	if err := platform.Delay(ctx, s.watchdog, s.responseDelay, s.heartbeat); err != nil {
		return errors.Wrap(err, "response delay error")
	}

	return s.handler.Handle(ctx, frame.FunctionID, frame.OptData)
}

func (s *Server) count(ctx context.Context, m radio.Modem, err error) {
	uplinkFrameCounter(m, resultLabel(err)).Inc()

	if err := s.eeprom.IncrementFrameCounter(ctx, m, err == nil); err != nil {
		log.WithField("ctx_id", ctx.Value(logging.ContextIDKey)).WithError(err).Error("uplink: increment frame counter error")
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "valid"
	}

	switch errors.Cause(err) {
	case fcp.ErrCallsignMismatch:
		return "callsign_mismatch"
	case fcp.ErrInvalidLength:
		return "invalid_length"
	case fcp.ErrInvalidFunctionID:
		return "invalid_function_id"
	case fcp.ErrIncorrectPassword:
		return "incorrect_password"
	default:
		return "rejected"
	}
}
