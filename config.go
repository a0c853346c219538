package tenantcache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// EnvConfig is the environment variable LoadConfigFromEnv reads by default.
const EnvConfig = "CACHE_CONFIG"

const (
	defaultShards    = 32
	defaultScanCount = 1000
)

// Seconds is a TTL expressed in whole seconds. In JSON and YAML it accepts
// either a number (300, 0.5) or a duration string ("5m", "1d", "90s").
// Fractions are truncated, but a positive value below one second becomes one
// second so it never turns into "no expiry".
type Seconds int64

func (s Seconds) Duration() time.Duration { return time.Duration(s) * time.Second }

func (s *Seconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		return s.parse(str)
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ttl: %w", err)
	}
	*s = secondsOf(time.Duration(n * float64(time.Second)))
	return nil
}

func (s *Seconds) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("ttl: expected scalar, got %v", node.Tag)
	}
	return s.parse(node.Value)
}

func (s Seconds) MarshalYAML() (any, error) { return int64(s), nil }

func (s *Seconds) parse(v string) error {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		*s = Seconds(n)
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*s = secondsOf(time.Duration(f * float64(time.Second)))
		return nil
	}
	d, err := str2duration.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("ttl %q: %w", v, err)
	}
	*s = secondsOf(d)
	return nil
}

func secondsOf(d time.Duration) Seconds {
	if d > 0 && d < time.Second {
		return 1
	}
	return Seconds(d / time.Second)
}

// NamespaceConfig describes one namespace. Nil fields mean "not set":
// Enabled defaults to true, DefaultTTL to no expiry, UseInternal to the
// global default backend.
type NamespaceConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Enabled     *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	DefaultTTL  *Seconds `json:"defaultTtl,omitempty" yaml:"defaultTtl,omitempty"`
	UseInternal *bool    `json:"useInternal,omitempty" yaml:"useInternal,omitempty"`
}

// Config is the startup description of the cache. It is turned into an
// immutable Registry by NewRegistry.
type Config struct {
	Enabled        *bool             `json:"enableCache,omitempty" yaml:"enableCache,omitempty"`
	Shards         int               `json:"shards,omitempty" yaml:"shards,omitempty"`
	ScanCount      int               `json:"scanCount,omitempty" yaml:"scanCount,omitempty"`
	DefaultBackend Backend           `json:"defaultBackend,omitempty" yaml:"defaultBackend,omitempty"`
	Namespaces     []NamespaceConfig `json:"namespaces" yaml:"namespaces"`
}

func ptr[T any](v T) *T { return &v }

// DefaultConfig is the compiled-in namespace table used when no configuration
// is supplied or the supplied one cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Enabled:        ptr(true),
		Shards:         defaultShards,
		ScanCount:      defaultScanCount,
		DefaultBackend: BackendShared,
		Namespaces: []NamespaceConfig{
			{Name: "forms", DefaultTTL: ptr(Seconds(300)), UseInternal: ptr(false)},
			{Name: "organization", DefaultTTL: ptr(Seconds(3600)), UseInternal: ptr(false)},
			{Name: "organizationExtension", DefaultTTL: ptr(Seconds(3600)), UseInternal: ptr(false)},
			{Name: "entityTypes", DefaultTTL: ptr(Seconds(86400)), UseInternal: ptr(false)},
			{Name: "permissions", DefaultTTL: ptr(Seconds(3600)), UseInternal: ptr(false)},
			{Name: "mentor", DefaultTTL: ptr(Seconds(86400)), UseInternal: ptr(true)},
			{Name: "mentee", DefaultTTL: ptr(Seconds(86400)), UseInternal: ptr(true)},
			{Name: "sessions", DefaultTTL: ptr(Seconds(86400)), UseInternal: ptr(false)},
			{Name: "notificationTemplates", DefaultTTL: ptr(Seconds(86400)), UseInternal: ptr(false)},
			{Name: DefaultNamespace, DefaultTTL: ptr(Seconds(600))},
		},
	}
}

// ParseConfig decodes a JSON configuration document. Unknown fields are
// rejected so typos do not silently fall back to defaults.
func ParseConfig(raw []byte) (Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse cache config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports structural problems: unnamed or duplicate namespaces,
// unknown backends, negative sizes or TTLs.
func (c Config) Validate() error {
	if c.Shards < 0 {
		return fmt.Errorf("cache config: shards must be >= 0, got %d", c.Shards)
	}
	if c.ScanCount < 0 {
		return fmt.Errorf("cache config: scanCount must be >= 0, got %d", c.ScanCount)
	}
	if c.DefaultBackend != "" && !c.DefaultBackend.valid() {
		return fmt.Errorf("cache config: unknown defaultBackend %q", c.DefaultBackend)
	}
	seen := make(map[string]struct{}, len(c.Namespaces))
	for i, ns := range c.Namespaces {
		if ns.Name == "" {
			return fmt.Errorf("cache config: namespace #%d has no name", i)
		}
		if strings.Contains(ns.Name, keySep) {
			return fmt.Errorf("cache config: namespace %q contains %q", ns.Name, keySep)
		}
		if _, dup := seen[ns.Name]; dup {
			return fmt.Errorf("cache config: duplicate namespace %q", ns.Name)
		}
		seen[ns.Name] = struct{}{}
		if ns.DefaultTTL != nil && *ns.DefaultTTL < 0 {
			return fmt.Errorf("cache config: namespace %q has negative defaultTtl", ns.Name)
		}
	}
	return nil
}

// LoadConfig parses raw and falls back to DefaultConfig when raw is empty or
// malformed. A bad document is logged, never returned: cache misconfiguration
// must not stop the process from serving.
func LoadConfig(raw string, log Logger) Config {
	log = coalesce[Logger](log, NopLogger{})
	if strings.TrimSpace(raw) == "" {
		return DefaultConfig()
	}
	cfg, err := ParseConfig([]byte(raw))
	if err != nil {
		log.Warn("invalid cache config, using defaults", Fields{"err": err})
		return DefaultConfig()
	}
	return cfg
}

// LoadConfigFromEnv reads the JSON document from the named environment
// variable (EnvConfig when name is empty).
func LoadConfigFromEnv(name string, log Logger) Config {
	if name == "" {
		name = EnvConfig
	}
	return LoadConfig(os.Getenv(name), log)
}

// LoadConfigFile reads a YAML (.yaml/.yml) or JSON file. Unlike LoadConfig it
// returns errors, since it is used for explicit operator actions.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read cache config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var cfg Config
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	default:
		return ParseConfig(data)
	}
}
