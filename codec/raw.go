package codec

import "fmt"

// Raw passes []byte and string values through untouched. Anything else is an
// error.
type Raw struct{}

var _ Codec = Raw{}

func (Raw) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, fmt.Errorf("raw codec: unsupported type %T", v)
	}
}

func (Raw) Unmarshal(b []byte, out any) error {
	switch p := out.(type) {
	case *[]byte:
		*p = append((*p)[:0], b...)
	case *string:
		*p = string(b)
	default:
		return fmt.Errorf("raw codec: unsupported target %T", out)
	}
	return nil
}
