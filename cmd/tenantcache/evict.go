package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/tenantcache"
)

func newEvictCmd(g *globalFlags) *cobra.Command {
	var suffix string
	cmd := &cobra.Command{
		Use:   "evict",
		Short: "Delete shared-store keys by scope (local caches are not reached)",
	}
	cmd.PersistentFlags().StringVar(&suffix, "suffix", "*", "glob appended to the scope prefix")

	run := func(fn func(c *tenantcache.Cache, cmd *cobra.Command, args []string) (int, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := g.open()
			if err != nil {
				return err
			}
			defer cleanup()
			n, err := fn(c, cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d keys\n", n)
			return nil
		}
	}

	var org string
	nsCmd := &cobra.Command{
		Use:   "namespace <tenant> <namespace>",
		Short: "Evict one namespace of a tenant (or of an org with --org)",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(c *tenantcache.Cache, cmd *cobra.Command, args []string) (int, error) {
			return c.EvictNamespace(cmd.Context(), args[0], org, args[1], suffix)
		}),
	}
	nsCmd.Flags().StringVar(&org, "org", "", "organization code")

	orgCmd := &cobra.Command{
		Use:   "org <tenant> <org>",
		Short: "Evict every namespace of an organization",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(c *tenantcache.Cache, cmd *cobra.Command, args []string) (int, error) {
			return c.EvictOrgByPattern(cmd.Context(), args[0], args[1], suffix)
		}),
	}

	tenantCmd := &cobra.Command{
		Use:   "tenant <tenant>",
		Short: "Evict everything of a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(c *tenantcache.Cache, cmd *cobra.Command, args []string) (int, error) {
			return c.EvictTenantByPattern(cmd.Context(), args[0], suffix)
		}),
	}

	cmd.AddCommand(nsCmd, orgCmd, tenantCmd)
	return cmd
}
