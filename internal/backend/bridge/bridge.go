// Package bridge connects the radio controller to a transceiver attached to
// a message broker. Received frames arrive as uplink frames, responses leave
// as downlink frames and every modem change is published as a modem
// configuration.
package bridge

import (
	"github.com/brocaar/chirpstack-api/go/v3/gw"
)

// Bridge is the interface of a radio bridge backend.
type Bridge interface {
	SendDownlinkFrame(*gw.DownlinkFrame) error        // send the given frame to the transceiver
	SendConfiguration(*gw.GatewayConfiguration) error // send the receive configuration to the transceiver
	UplinkFrameChan() chan *gw.UplinkFrame            // channel containing the received frames
	Close() error                                     // close the bridge backend
}
