package main

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/tenantcache"
	zaplog "github.com/unkn0wn-root/tenantcache/log/zap"
	"github.com/unkn0wn-root/tenantcache/store/redis"
)

type globalFlags struct {
	configPath string
	redisURL   string
	timeout    time.Duration
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "tenantcache",
		Short:         "Inspect and evict tenant cache entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML or JSON config file (default: $"+tenantcache.EnvConfig+" or built-in table)")
	pf.StringVar(&g.redisURL, "redis-url", "redis://localhost:6379/0", "shared store URL")
	pf.DurationVar(&g.timeout, "timeout", 2*time.Second, "per backend call timeout")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newConfigCmd(g), newKeyCmd(g), newEvictCmd(g))
	return cmd
}

func (g *globalFlags) logger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if g.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func (g *globalFlags) config(log tenantcache.Logger) (tenantcache.Config, error) {
	if g.configPath != "" {
		return tenantcache.LoadConfigFile(g.configPath)
	}
	return tenantcache.LoadConfigFromEnv("", log), nil
}

// open connects to the shared store. The returned cleanup closes the client
// and flushes the logger.
func (g *globalFlags) open() (*tenantcache.Cache, func(), error) {
	zl, err := g.logger()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	log := zaplog.ZapLogger{L: zl}

	cfg, err := g.config(log)
	if err != nil {
		return nil, nil, err
	}
	opt, err := goredis.ParseURL(g.redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	shared, err := redis.New(redis.Config{Client: goredis.NewClient(opt), CloseClient: true})
	if err != nil {
		return nil, nil, err
	}
	c, err := tenantcache.New(tenantcache.Options{
		Config:    &cfg,
		Shared:    shared,
		Logger:    log,
		OpTimeout: g.timeout,
	})
	if err != nil {
		_ = shared.Close(context.Background())
		return nil, nil, err
	}
	cleanup := func() {
		_ = c.Close(context.Background())
		_ = zl.Sync()
	}
	return c, cleanup, nil
}
