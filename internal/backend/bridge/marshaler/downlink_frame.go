package marshaler

import (
	"github.com/brocaar/chirpstack-api/go/v3/gw"
)

// MarshalDownlinkFrame marshals the given DownlinkFrame.
func MarshalDownlinkFrame(t Type, df *gw.DownlinkFrame) ([]byte, error) {
	return marshal(t, df)
}
