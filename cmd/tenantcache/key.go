package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/tenantcache"
	"github.com/unkn0wn-root/tenantcache/shard"
)

func newKeyCmd(g *globalFlags) *cobra.Command {
	var p tenantcache.KeyParts
	cmd := &cobra.Command{
		Use:   "key <tenant>",
		Short: "Print the storage key, backend and shard for an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Tenant = args[0]
			key, err := tenantcache.BuildKey(p)
			if err != nil {
				return err
			}
			cfg, err := g.config(tenantcache.NopLogger{})
			if err != nil {
				return err
			}
			reg := tenantcache.NewRegistry(cfg)
			ttl := "none"
			if d := reg.ResolveTTL(p.Namespace, 0); d > 0 {
				ttl = d.String()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key:     %s\nbackend: %s\nttl:     %s\nshard:   %d/%d\n",
				key, reg.ResolveBackend(p.Namespace, ""), ttl, shard.Of(key, reg.Shards()), reg.Shards())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Org, "org", "", "organization code")
	f.StringVar(&p.Namespace, "namespace", "", "namespace")
	f.StringVar(&p.ID, "id", "", "identifier within the namespace")
	f.StringVar(&p.Key, "raw", "", "raw tenant-level key (used when --namespace and --id are empty)")
	return cmd
}
