package tenantcache

import (
	"errors"
	"fmt"
)

// Caller contract violations. These are the only errors the cache returns;
// backend failures are logged and absorbed.
var (
	ErrTenantRequired    = errors.New("tenantcache: tenant code is required")
	ErrOrgRequired       = errors.New("tenantcache: organization code is required")
	ErrNamespaceRequired = errors.New("tenantcache: namespace is required")
	ErrKeyRequired       = errors.New("tenantcache: identifier or key is required")
)

// SegmentError reports a scope segment that would break the key hierarchy.
type SegmentError struct {
	Field string
	Value string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("tenantcache: %s %q must not contain %q", e.Field, e.Value, keySep)
}
