package tenantcache

import "strings"

const (
	keySep       = ":"
	tenantPrefix = "tenant"
	orgPrefix    = "org"

	// DefaultNamespace is used when an ID is given without a namespace.
	DefaultNamespace = "general"
)

// KeyParts is the input tuple of BuildKey.
type KeyParts struct {
	Tenant    string // required
	Org       string // optional
	Namespace string // optional
	ID        string // optional
	Key       string // raw trailing segment; used when ID is empty
}

// BuildKey maps parts to a storage key:
//
//	tenant:{t}[:org:{o}]:{ns}:{id}   when Namespace or ID is set
//	tenant:{t}[:org:{o}]:{key}       otherwise
//
// The result depends only on parts. Tenant is mandatory; a key without it
// would sit outside every tenant's eviction scope.
func BuildKey(p KeyParts) (string, error) {
	if err := checkScope(p.Tenant, p.Org); err != nil {
		return "", err
	}
	if p.Namespace != "" || p.ID != "" {
		ns := p.Namespace
		if ns == "" {
			ns = DefaultNamespace
		}
		if err := checkSegment("namespace", ns); err != nil {
			return "", err
		}
		id := p.ID
		if id == "" {
			id = p.Key
		}
		if id == "" {
			return "", ErrKeyRequired
		}
		return scopePrefix(p.Tenant, p.Org) + ns + keySep + id, nil
	}
	if p.Key == "" {
		return "", ErrKeyRequired
	}
	return scopePrefix(p.Tenant, p.Org) + p.Key, nil
}

// scopePrefix returns "tenant:{t}:" or "tenant:{t}:org:{o}:".
func scopePrefix(tenant, org string) string {
	var b strings.Builder
	b.Grow(len(tenantPrefix) + len(tenant) + len(orgPrefix) + len(org) + 4)
	b.WriteString(tenantPrefix)
	b.WriteString(keySep)
	b.WriteString(tenant)
	b.WriteString(keySep)
	if org != "" {
		b.WriteString(orgPrefix)
		b.WriteString(keySep)
		b.WriteString(org)
		b.WriteString(keySep)
	}
	return b.String()
}

func checkScope(tenant, org string) error {
	if tenant == "" {
		return ErrTenantRequired
	}
	if err := checkSegment("tenant", tenant); err != nil {
		return err
	}
	if org != "" {
		return checkSegment("org", org)
	}
	return nil
}

func checkSegment(field, v string) error {
	if strings.Contains(v, keySep) {
		return &SegmentError{Field: field, Value: v}
	}
	return nil
}

// NamespacePattern matches every key of ns under tenant (and org, if set).
// suffix is appended verbatim as a glob; "" means "*".
func NamespacePattern(tenant, org, ns, suffix string) (string, error) {
	if err := checkScope(tenant, org); err != nil {
		return "", err
	}
	if ns == "" {
		return "", ErrNamespaceRequired
	}
	if err := checkSegment("namespace", ns); err != nil {
		return "", err
	}
	return escapeGlob(scopePrefix(tenant, org)+ns+keySep) + globSuffix(suffix), nil
}

// OrgPattern matches every key of org under tenant, across namespaces.
func OrgPattern(tenant, org, suffix string) (string, error) {
	if org == "" {
		return "", ErrOrgRequired
	}
	if err := checkScope(tenant, org); err != nil {
		return "", err
	}
	return escapeGlob(scopePrefix(tenant, org)) + globSuffix(suffix), nil
}

// TenantPattern matches every key of tenant, across orgs and namespaces.
func TenantPattern(tenant, suffix string) (string, error) {
	if err := checkScope(tenant, ""); err != nil {
		return "", err
	}
	return escapeGlob(scopePrefix(tenant, "")) + globSuffix(suffix), nil
}

func globSuffix(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

// escapeGlob quotes the glob metacharacters understood by redis MATCH so that
// a literal prefix never matches more than itself.
func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\^`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\', '^':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
