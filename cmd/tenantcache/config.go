package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/tenantcache"
)

type namespaceView struct {
	Name       string `yaml:"name"`
	Enabled    bool   `yaml:"enabled"`
	DefaultTTL string `yaml:"defaultTtl"`
	Backend    string `yaml:"backend"`
}

type registryView struct {
	Enabled        bool            `yaml:"enabled"`
	Shards         int             `yaml:"shards"`
	ScanCount      int             `yaml:"scanCount"`
	DefaultBackend string          `yaml:"defaultBackend"`
	Namespaces     []namespaceView `yaml:"namespaces"`
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved namespace table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config(tenantcache.NopLogger{})
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			reg := tenantcache.NewRegistry(cfg)
			view := registryView{
				Enabled:        reg.Enabled(),
				Shards:         reg.Shards(),
				ScanCount:      reg.ScanCount(),
				DefaultBackend: string(reg.DefaultBackend()),
			}
			for _, ns := range reg.Namespaces() {
				ttl := "none"
				if ns.DefaultTTL > 0 {
					ttl = ns.DefaultTTL.String()
				}
				view.Namespaces = append(view.Namespaces, namespaceView{
					Name:       ns.Name,
					Enabled:    reg.IsEnabled(ns.Name),
					DefaultTTL: ttl,
					Backend:    string(reg.ResolveBackend(ns.Name, "")),
				})
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(view)
		},
	}
}
