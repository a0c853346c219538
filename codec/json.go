package codec

import "encoding/json"

// JSON uses encoding/json. Handy when the shared store is inspected by other
// services or by hand.
type JSON struct{}

var _ Codec = JSON{}

func (JSON) Marshal(v any) ([]byte, error)     { return json.Marshal(v) }
func (JSON) Unmarshal(b []byte, out any) error { return json.Unmarshal(b, out) }
