package codec

import "fmt"

// Limit wraps another codec to enforce a maximum payload size at decode time.
// Marshal is forwarded unchanged. MaxDecode <= 0 disables the check.
//
// Typical use: guard against oversized entries read back from a shared store
// that other processes can write to.
type Limit struct {
	Inner     Codec
	MaxDecode int
}

var _ Codec = Limit{}

func (c Limit) Marshal(v any) ([]byte, error) { return c.Inner.Marshal(v) }

func (c Limit) Unmarshal(b []byte, out any) error {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Unmarshal(b, out)
}
