package marshaler

import (
	"bytes"

	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
)

// UnmarshalUplinkFrame unmarshals an UplinkFrame and returns the detected
// encoding.
func UnmarshalUplinkFrame(b []byte, uf *gw.UplinkFrame) (Type, error) {
	t := detect(b)

	switch t {
	case JSON:
		m := jsonpb.Unmarshaler{
			AllowUnknownFields: true,
		}
		return t, m.Unmarshal(bytes.NewReader(b), uf)
	default:
		return t, proto.Unmarshal(b, uf)
	}
}
