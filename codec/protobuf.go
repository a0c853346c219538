package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Protobuf encodes proto.Message values. Unmarshal expects out to be a
// pointer to a concrete message (e.g. *pb.Form).
type Protobuf struct{}

var _ Codec = Protobuf{}

func (Protobuf) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("protobuf codec: %T is not a proto.Message", v)
	}
	return proto.Marshal(m)
}

func (Protobuf) Unmarshal(b []byte, out any) error {
	m, ok := out.(proto.Message)
	if !ok {
		return fmt.Errorf("protobuf codec: %T is not a proto.Message", out)
	}
	return proto.Unmarshal(b, m)
}
