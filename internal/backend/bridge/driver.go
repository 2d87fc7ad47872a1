package bridge

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/brocaar/lorawan"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/logging"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

// Driver implements radio.Driver on top of a Bridge. Received frames are
// handed to the latch when they were received with the modulation of the
// active modem.
//
// The transceiver applies the TX info of a downlink for that transmission
// only and returns to the last published configuration afterwards.
type Driver struct {
	bridge  Bridge
	modemID lorawan.EUI64
	latch   *radio.Latch

	mu         sync.RWMutex
	active     radio.Configuration
	configured bool
	version    int
	info       radio.PacketInfo

	wg sync.WaitGroup
}

// NewDriver creates a Driver and starts consuming the uplink frames of the
// bridge.
func NewDriver(b Bridge, modemID lorawan.EUI64, l *radio.Latch) *Driver {
	d := Driver{
		bridge:  b,
		modemID: modemID,
		latch:   l,
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.handleUplinkFrames()
	}()

	return &d
}

// Wait blocks until the uplink channel of the bridge has been closed and all
// frames have been handled.
func (d *Driver) Wait() {
	d.wg.Wait()
}

// Configure publishes the receive configuration.
func (d *Driver) Configure(ctx context.Context, c radio.Configuration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.version++
	version := d.version
	d.mu.Unlock()

	gc := gw.GatewayConfiguration{
		GatewayId: d.modemID[:],
		Version:   fmt.Sprintf("%c-%d", c.Modem, version),
		Channels:  []*gw.ChannelConfiguration{ChannelConfiguration(c)},
	}

	if err := d.bridge.SendConfiguration(&gc); err != nil {
		return errors.Wrap(err, "send configuration error")
	}

	d.mu.Lock()
	d.active = c
	d.configured = true
	d.mu.Unlock()

	log.WithFields(log.Fields{
		"modem_id": d.modemID,
		"modem":    c.Modem,
		"version":  gc.Version,
		"ctx_id":   ctx.Value(logging.ContextIDKey),
	}).Info("bridge: modem configuration published")
	return nil
}

// Transmit publishes the frame as a downlink using the given configuration.
func (d *Driver) Transmit(ctx context.Context, c radio.Configuration, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txInfo, err := DownlinkTXInfo(d.modemID[:], c)
	if err != nil {
		return err
	}

	downID, err := uuid.NewV4()
	if err != nil {
		return errors.Wrap(err, "new uuid error")
	}

	df := gw.DownlinkFrame{
		DownlinkId: downID.Bytes(),
		GatewayId:  d.modemID[:],
		Items: []*gw.DownlinkFrameItem{
			{
				PhyPayload: frame,
				TxInfo:     txInfo,
			},
		},
	}

	if err := d.bridge.SendDownlinkFrame(&df); err != nil {
		return errors.Wrap(err, "send downlink frame error")
	}

	log.WithFields(log.Fields{
		"modem_id":    d.modemID,
		"modem":       c.Modem,
		"downlink_id": downID,
		"ctx_id":      ctx.Value(logging.ContextIDKey),
	}).Debug("bridge: downlink frame published")
	return nil
}

// PacketInfo returns the signal quality of the last accepted frame.
func (d *Driver) PacketInfo() radio.PacketInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info
}

func (d *Driver) handleUplinkFrames() {
	for uf := range d.bridge.UplinkFrameChan() {
		if err := d.handleUplinkFrame(uf); err != nil {
			bridgeDroppedCounter(err.Error()).Inc()
			log.WithFields(log.Fields{
				"data_hex": hex.EncodeToString(uf.GetPhyPayload()),
				"reason":   err,
			}).Debug("bridge: uplink frame dropped")
		}
	}
}

// errors used as drop reasons
var (
	errMissingInfo       = errors.New("missing tx_info or rx_info")
	errModemID           = errors.New("modem_id mismatch")
	errModemInactive     = errors.New("modem inactive")
	errUnknownModulation = errors.New("unknown modulation")
	errBusy              = errors.New("busy")
)

func (d *Driver) handleUplinkFrame(uf *gw.UplinkFrame) error {
	if uf.GetTxInfo() == nil || uf.GetRxInfo() == nil {
		return errMissingInfo
	}

	if !bytes.Equal(uf.RxInfo.GatewayId, d.modemID[:]) {
		return errModemID
	}

	m, ok := modemFromModulation(uf.TxInfo.Modulation)
	if !ok {
		return errUnknownModulation
	}

	d.mu.RLock()
	active := d.configured && d.active.Modem == m
	d.mu.RUnlock()
	if !active {
		return errModemInactive
	}

	if !d.latch.Enabled() {
		return errBusy
	}

	d.mu.Lock()
	d.info = radio.PacketInfo{
		SNR:  uf.RxInfo.LoraSnr,
		RSSI: float64(uf.RxInfo.Rssi),
	}
	d.mu.Unlock()

	if !d.latch.Notify(radio.RXFrame{Modem: m, Data: uf.PhyPayload}) {
		return errBusy
	}

	bridgeUplinkCounter(m).Inc()
	return nil
}
