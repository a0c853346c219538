// Command tenantcache inspects cache configuration and runs pattern evictions
// against the shared store.
//
//	tenantcache config --config cache.yaml
//	tenantcache key t1 --org o1 --namespace mentee --id u42
//	tenantcache evict namespace t1 forms
//	tenantcache evict org t1 o1
//	tenantcache evict tenant t1
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
