package test

import (
	"sync"

	"github.com/brocaar/chirpstack-api/go/v3/gw"
)

// BridgeBackend is a test radio bridge backend.
type BridgeBackend struct {
	closeOnce sync.Once

	uplinkFrameChan   chan *gw.UplinkFrame
	DownlinkFrameChan chan *gw.DownlinkFrame
	ConfigurationChan chan *gw.GatewayConfiguration
	SendErr           error
}

// NewBridgeBackend returns a new BridgeBackend.
func NewBridgeBackend() *BridgeBackend {
	return &BridgeBackend{
		uplinkFrameChan:   make(chan *gw.UplinkFrame, 100),
		DownlinkFrameChan: make(chan *gw.DownlinkFrame, 100),
		ConfigurationChan: make(chan *gw.GatewayConfiguration, 100),
	}
}

// SendDownlinkFrame method.
func (b *BridgeBackend) SendDownlinkFrame(df *gw.DownlinkFrame) error {
	if b.SendErr != nil {
		return b.SendErr
	}
	b.DownlinkFrameChan <- df
	return nil
}

// SendConfiguration method.
func (b *BridgeBackend) SendConfiguration(gc *gw.GatewayConfiguration) error {
	if b.SendErr != nil {
		return b.SendErr
	}
	b.ConfigurationChan <- gc
	return nil
}

// UplinkFrameChan method.
func (b *BridgeBackend) UplinkFrameChan() chan *gw.UplinkFrame {
	return b.uplinkFrameChan
}

// Close method.
func (b *BridgeBackend) Close() error {
	b.closeOnce.Do(func() {
		close(b.uplinkFrameChan)
	})
	return nil
}
