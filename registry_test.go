package tenantcache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureLogger struct {
	NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *captureLogger) Warn(msg string, _ Fields) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func TestRegistryEnabledIsOptOut(t *testing.T) {
	r := NewRegistry(testConfig())
	if !r.IsEnabled("forms") || !r.IsEnabled("plain") {
		t.Fatalf("configured namespaces without enabled=false must be enabled")
	}
	if !r.IsEnabled("never-configured") {
		t.Fatalf("unknown namespace must be enabled")
	}
	if r.IsEnabled("off") {
		t.Fatalf("namespace with enabled=false must be disabled")
	}

	cfg := testConfig()
	cfg.Enabled = ptr(false)
	if NewRegistry(cfg).IsEnabled("forms") {
		t.Fatalf("global switch must disable every namespace")
	}
}

func TestResolveTTLPrecedence(t *testing.T) {
	cfg := testConfig()
	cfg.Namespaces = append(cfg.Namespaces, NamespaceConfig{Name: "sixty", DefaultTTL: ptr(Seconds(60))})
	r := NewRegistry(cfg)

	if got := r.ResolveTTL("sixty", 30*time.Second); got != 30*time.Second {
		t.Fatalf("explicit must win: got %v", got)
	}
	if got := r.ResolveTTL("sixty", 0); got != 60*time.Second {
		t.Fatalf("namespace default expected: got %v", got)
	}
	if got := r.ResolveTTL("plain", 0); got != 0 {
		t.Fatalf("no default => no expiry: got %v", got)
	}
	if got := r.ResolveTTL("sixty", 1500*time.Millisecond); got != time.Second {
		t.Fatalf("explicit must be whole seconds: got %v", got)
	}
	if got := r.ResolveTTL("sixty", time.Millisecond); got != time.Second {
		t.Fatalf("sub-second explicit must floor to 1s: got %v", got)
	}
}

func TestResolveBackendPrecedence(t *testing.T) {
	r := NewRegistry(testConfig())

	if got := r.ResolveBackend("mentee", BackendShared); got != BackendShared {
		t.Fatalf("override must beat namespace preference: got %v", got)
	}
	if got := r.ResolveBackend("forms", BackendLocal); got != BackendLocal {
		t.Fatalf("override must beat namespace preference: got %v", got)
	}
	if got := r.ResolveBackend("mentee", ""); got != BackendLocal {
		t.Fatalf("namespace preference expected: got %v", got)
	}
	if got := r.ResolveBackend("plain", ""); got != BackendShared {
		t.Fatalf("global default expected: got %v", got)
	}

	cfg := testConfig()
	cfg.DefaultBackend = BackendLocal
	r = NewRegistry(cfg)
	if got := r.ResolveBackend("plain", ""); got != BackendLocal {
		t.Fatalf("configured global default expected: got %v", got)
	}
	if got := r.ResolveBackend("forms", ""); got != BackendShared {
		t.Fatalf("namespace preference must beat global default: got %v", got)
	}
}

func TestLoadConfigFallsBackOnMalformed(t *testing.T) {
	log := &captureLogger{}
	cfg := LoadConfig(`{"namespaces": [`, log)
	if len(cfg.Namespaces) != len(DefaultConfig().Namespaces) {
		t.Fatalf("expected default table, got %+v", cfg)
	}
	if len(log.warns) != 1 {
		t.Fatalf("expected one warning, got %v", log.warns)
	}

	cfg = LoadConfig("", log)
	if len(cfg.Namespaces) != len(DefaultConfig().Namespaces) || len(log.warns) != 1 {
		t.Fatalf("empty document must silently use defaults")
	}

	// structurally valid JSON with a duplicate namespace is rejected too
	cfg = LoadConfig(`{"namespaces":[{"name":"a"},{"name":"a"}]}`, log)
	if len(cfg.Namespaces) != len(DefaultConfig().Namespaces) || len(log.warns) != 2 {
		t.Fatalf("invalid document must fall back with a warning")
	}
}

func TestParseConfigTTLForms(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"enableCache": true,
		"shards": 8,
		"scanCount": 50,
		"namespaces": [
			{"name": "forms", "defaultTtl": 300, "useInternal": false},
			{"name": "mentee", "defaultTtl": "1d", "useInternal": true},
			{"name": "sessions", "defaultTtl": "90s", "enabled": false}
		]
	}`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	r := NewRegistry(cfg)
	if r.Shards() != 8 || r.ScanCount() != 50 {
		t.Fatalf("shards/scanCount not applied: %d %d", r.Shards(), r.ScanCount())
	}
	if d, _ := r.DefaultTTL("forms"); d != 300*time.Second {
		t.Fatalf("forms ttl %v", d)
	}
	if d, _ := r.DefaultTTL("mentee"); d != 24*time.Hour {
		t.Fatalf("mentee ttl %v", d)
	}
	if d, _ := r.DefaultTTL("sessions"); d != 90*time.Second {
		t.Fatalf("sessions ttl %v", d)
	}
	if r.IsEnabled("sessions") {
		t.Fatalf("sessions must be disabled")
	}
}

func TestParseConfigRejectsUnknownBackend(t *testing.T) {
	if _, err := ParseConfig([]byte(`{"defaultBackend":"disk","namespaces":[]}`)); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := ParseConfig([]byte(`{"namespaces":[{"name":"a","bogus":1}]}`)); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TEST_CACHE_CONFIG", `{"namespaces":[{"name":"only","defaultTtl":5}]}`)
	cfg := LoadConfigFromEnv("TEST_CACHE_CONFIG", nil)
	if len(cfg.Namespaces) != 1 || cfg.Namespaces[0].Name != "only" {
		t.Fatalf("env config not used: %+v", cfg)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cache.yaml")
	doc := strings.Join([]string{
		"enableCache: true",
		"scanCount: 10",
		"namespaces:",
		"  - name: forms",
		"    defaultTtl: 5m",
		"    useInternal: false",
		"  - name: mentee",
		"    useInternal: true",
	}, "\n")
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	r := NewRegistry(cfg)
	if d, _ := r.DefaultTTL("forms"); d != 5*time.Minute {
		t.Fatalf("forms ttl %v", d)
	}
	if b, _ := r.BackendPreference("mentee"); b != BackendLocal {
		t.Fatalf("mentee backend %v", b)
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("namespaces:\n  - nme: x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(bad); err == nil {
		t.Fatalf("expected error for unknown yaml field")
	}
}

func TestSubSecondDefaultTTLFloorsToOneSecond(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"namespaces":[
		{"name":"ms", "defaultTtl":"500ms"},
		{"name":"half", "defaultTtl":0.5},
		{"name":"frac", "defaultTtl":2.7},
		{"name":"zero", "defaultTtl":0}
	]}`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	r := NewRegistry(cfg)
	for ns, want := range map[string]time.Duration{"ms": time.Second, "half": time.Second, "frac": 2 * time.Second} {
		d, ok := r.DefaultTTL(ns)
		if !ok || d != want {
			t.Fatalf("%s: ttl=%v ok=%v, want %v", ns, d, ok, want)
		}
		if got := r.ResolveTTL(ns, 0); got != want {
			t.Fatalf("%s: ResolveTTL=%v", ns, got)
		}
	}
	if _, ok := r.DefaultTTL("zero"); ok {
		t.Fatalf("explicit 0 still means no default")
	}
}

func TestSubSecondDefaultTTLInYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cache.yml")
	doc := "namespaces:\n  - name: a\n    defaultTtl: 0.5\n  - name: b\n    defaultTtl: 250ms\n"
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	r := NewRegistry(cfg)
	for _, ns := range []string{"a", "b"} {
		if d, ok := r.DefaultTTL(ns); !ok || d != time.Second {
			t.Fatalf("%s: ttl=%v ok=%v", ns, d, ok)
		}
	}
}
