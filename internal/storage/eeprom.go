package storage

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

// EEPROMSize holds the size of the EEPROM image.
const EEPROMSize = 1024

// EEPROM address map.
const (
	DeploymentCounterAddr  Address = 0x0000 // uint8
	PowerConfigAddr        Address = 0x0001 // uint8
	FirstRunAddr           Address = 0x0002 // uint8
	RestartCounterAddr     Address = 0x0003 // uint16
	FSKReceiveLengthAddr   Address = 0x0005 // uint8, seconds
	LoRaReceiveLengthAddr  Address = 0x0006 // uint8, seconds
	UptimeCounterAddr      Address = 0x0007 // uint32, seconds
	LoRaValidCounterAddr   Address = 0x000B // uint16
	LoRaInvalidCounterAddr Address = 0x000D // uint16
	FSKValidCounterAddr    Address = 0x000F // uint16
	FSKInvalidCounterAddr  Address = 0x0011 // uint16
	CallsignLengthAddr     Address = 0x0013 // uint8, including terminator
	CallsignAddr           Address = 0x0014 // up to 32 bytes
)

// First run flag values.
const (
	firstRun       uint8 = 0
	consecutiveRun uint8 = 1
)

// Defaults holds the values written when the EEPROM is wiped.
type Defaults struct {
	Callsign          string
	FSKReceiveWindow  uint8
	LoRaReceiveWindow uint8
}

// FrameCounters holds the valid and invalid frame counters per modem.
type FrameCounters struct {
	LoRaValid   uint16
	LoRaInvalid uint16
	FSKValid    uint16
	FSKInvalid  uint16
}

// EEPROM implements the stored variables on top of a Store. It performs
// load-modify-store updates and expects a single writer.
type EEPROM struct {
	store    Store
	defaults Defaults
}

// NewEEPROM creates an EEPROM.
func NewEEPROM(s Store, d Defaults) *EEPROM {
	return &EEPROM{
		store:    s,
		defaults: d,
	}
}

// Store returns the underlying store.
func (e *EEPROM) Store() Store {
	return e.store
}

// Init formats an erased image and marks the first run as done. It returns
// true when this is the first run since the last wipe.
func (e *EEPROM) Init(ctx context.Context) (bool, error) {
	flag, err := Read[uint8](ctx, e.store, FirstRunAddr)
	if err != nil {
		return false, err
	}

	if flag != firstRun && flag != consecutiveRun {
		log.Info("storage: eeprom not formatted, wiping")
		if err := e.Wipe(ctx); err != nil {
			return false, errors.Wrap(err, "format eeprom error")
		}
		flag = firstRun
	}

	if flag == firstRun {
		if err := Write(ctx, e.store, FirstRunAddr, consecutiveRun); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// Wipe erases the image and writes the default values.
func (e *EEPROM) Wipe(ctx context.Context) error {
	log.Warning("storage: wiping eeprom")

	if err := e.store.WriteAt(ctx, bytes.Repeat([]byte{resetValue}, e.store.Size()), 0); err != nil {
		return errors.Wrap(err, "erase eeprom error")
	}

	if err := Write(ctx, e.store, DeploymentCounterAddr, uint8(0)); err != nil {
		return err
	}
	if err := e.SetPowerConfig(ctx, DefaultPowerConfig()); err != nil {
		return err
	}
	if err := Write(ctx, e.store, FirstRunAddr, firstRun); err != nil {
		return err
	}
	if err := Write(ctx, e.store, RestartCounterAddr, uint16(0)); err != nil {
		return err
	}
	if err := e.SetReceiveWindows(ctx, e.defaults.FSKReceiveWindow, e.defaults.LoRaReceiveWindow); err != nil {
		return err
	}
	if err := Write(ctx, e.store, UptimeCounterAddr, uint32(0)); err != nil {
		return err
	}
	for _, addr := range []Address{LoRaValidCounterAddr, LoRaInvalidCounterAddr, FSKValidCounterAddr, FSKInvalidCounterAddr} {
		if err := Write(ctx, e.store, addr, uint16(0)); err != nil {
			return err
		}
	}
	if err := e.SetCallsign(ctx, e.defaults.Callsign); err != nil {
		return errors.Wrap(err, "set default callsign error")
	}

	return e.ResetStats(ctx)
}

// Callsign returns the stored callsign.
func (e *EEPROM) Callsign(ctx context.Context) (string, error) {
	l, err := Read[uint8](ctx, e.store, CallsignLengthAddr)
	if err != nil {
		return "", err
	}
	if l < 2 || int(l) > fcp.MaxStringLength {
		return "", ErrInvalidCallsign
	}

	b := make([]byte, l-1)
	if err := e.store.ReadAt(ctx, b, CallsignAddr); err != nil {
		return "", errors.Wrap(err, "read callsign error")
	}
	return string(b), nil
}

// SetCallsign stores the given callsign.
func (e *EEPROM) SetCallsign(ctx context.Context, callsign string) error {
	if len(callsign) == 0 || len(callsign) > fcp.MaxStringLength-1 {
		return ErrInvalidCallsign
	}

	if err := Write(ctx, e.store, CallsignLengthAddr, uint8(len(callsign)+1)); err != nil {
		return err
	}
	if err := e.store.WriteAt(ctx, append([]byte(callsign), 0x00), CallsignAddr); err != nil {
		return errors.Wrap(err, "write callsign error")
	}
	return nil
}

// PowerConfig returns the stored power configuration.
func (e *EEPROM) PowerConfig(ctx context.Context) (PowerConfig, error) {
	b, err := Read[uint8](ctx, e.store, PowerConfigAddr)
	if err != nil {
		return PowerConfig{}, err
	}
	return ParsePowerConfig(b), nil
}

// SetPowerConfig stores the given power configuration.
func (e *EEPROM) SetPowerConfig(ctx context.Context, pc PowerConfig) error {
	return Write(ctx, e.store, PowerConfigAddr, pc.Byte())
}

// UpdatePowerConfig loads the power configuration, applies f and stores it.
func (e *EEPROM) UpdatePowerConfig(ctx context.Context, f func(*PowerConfig)) error {
	pc, err := e.PowerConfig(ctx)
	if err != nil {
		return err
	}
	f(&pc)
	return e.SetPowerConfig(ctx, pc)
}

// FrameCounters returns the frame counters.
func (e *EEPROM) FrameCounters(ctx context.Context) (FrameCounters, error) {
	var fc FrameCounters
	var err error

	if fc.LoRaValid, err = Read[uint16](ctx, e.store, LoRaValidCounterAddr); err != nil {
		return fc, err
	}
	if fc.LoRaInvalid, err = Read[uint16](ctx, e.store, LoRaInvalidCounterAddr); err != nil {
		return fc, err
	}
	if fc.FSKValid, err = Read[uint16](ctx, e.store, FSKValidCounterAddr); err != nil {
		return fc, err
	}
	if fc.FSKInvalid, err = Read[uint16](ctx, e.store, FSKInvalidCounterAddr); err != nil {
		return fc, err
	}
	return fc, nil
}

// IncrementFrameCounter increments the valid or invalid frame counter of the
// given modem.
func (e *EEPROM) IncrementFrameCounter(ctx context.Context, m radio.Modem, valid bool) error {
	var addr Address
	switch {
	case m == radio.ModemLoRa && valid:
		addr = LoRaValidCounterAddr
	case m == radio.ModemLoRa:
		addr = LoRaInvalidCounterAddr
	case valid:
		addr = FSKValidCounterAddr
	default:
		addr = FSKInvalidCounterAddr
	}
	return increment[uint16](ctx, e.store, addr)
}

// ReceiveWindows returns the FSK and LoRa receive window lengths in seconds.
func (e *EEPROM) ReceiveWindows(ctx context.Context) (fsk uint8, lora uint8, err error) {
	if fsk, err = Read[uint8](ctx, e.store, FSKReceiveLengthAddr); err != nil {
		return
	}
	lora, err = Read[uint8](ctx, e.store, LoRaReceiveLengthAddr)
	return
}

// SetReceiveWindows stores the FSK and LoRa receive window lengths.
func (e *EEPROM) SetReceiveWindows(ctx context.Context, fsk, lora uint8) error {
	if err := Write(ctx, e.store, FSKReceiveLengthAddr, fsk); err != nil {
		return err
	}
	return Write(ctx, e.store, LoRaReceiveLengthAddr, lora)
}

// RestartCounter returns the number of restarts.
func (e *EEPROM) RestartCounter(ctx context.Context) (uint16, error) {
	return Read[uint16](ctx, e.store, RestartCounterAddr)
}

// IncrementRestartCounter increments the restart counter.
func (e *EEPROM) IncrementRestartCounter(ctx context.Context) error {
	return increment[uint16](ctx, e.store, RestartCounterAddr)
}

// DeploymentCounter returns the number of deployment attempts.
func (e *EEPROM) DeploymentCounter(ctx context.Context) (uint8, error) {
	return Read[uint8](ctx, e.store, DeploymentCounterAddr)
}

// IncrementDeploymentCounter increments the deployment counter.
func (e *EEPROM) IncrementDeploymentCounter(ctx context.Context) error {
	return increment[uint8](ctx, e.store, DeploymentCounterAddr)
}

// Uptime returns the accumulated uptime in seconds.
func (e *EEPROM) Uptime(ctx context.Context) (uint32, error) {
	return Read[uint32](ctx, e.store, UptimeCounterAddr)
}

// AddUptime adds the given number of seconds to the uptime counter.
func (e *EEPROM) AddUptime(ctx context.Context, seconds uint32) error {
	v, err := Read[uint32](ctx, e.store, UptimeCounterAddr)
	if err != nil {
		return err
	}
	return Write(ctx, e.store, UptimeCounterAddr, v+seconds)
}

func increment[T Value](ctx context.Context, s Store, addr Address) error {
	v, err := Read[T](ctx, s, addr)
	if err != nil {
		return err
	}
	return Write(ctx, s, addr, v+1)
}
