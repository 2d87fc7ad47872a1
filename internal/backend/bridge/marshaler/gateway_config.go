package marshaler

import (
	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
)

// MarshalGatewayConfiguration marshals the modem configuration.
func MarshalGatewayConfiguration(t Type, gc *gw.GatewayConfiguration) ([]byte, error) {
	return marshal(t, gc)
}

func marshal(t Type, msg proto.Message) ([]byte, error) {
	switch t {
	case JSON:
		m := &jsonpb.Marshaler{
			EmitDefaults: true,
		}
		str, err := m.MarshalToString(msg)
		return []byte(str), err
	default:
		return proto.Marshal(msg)
	}
}
