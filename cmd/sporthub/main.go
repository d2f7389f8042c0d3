// Command sporthub serves the SportHub catalog API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"SportHub/internal/api"
	"SportHub/internal/async"
	"SportHub/internal/auth"
	"SportHub/internal/catalog"
	"SportHub/internal/config"
	"SportHub/pkg/kit"
)

const service = "sporthub"

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sporthub",
		Short:         "SportHub catalog service",
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(), newTokenCmd(), newSeedCmd(), newVersionCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	// flags beat the file and the environment
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("dsn") {
		cfg.Store.DSN, _ = cmd.Flags().GetString("dsn")
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().String("store", "", "backend: memory, postgres, sqlite or remote")
	cmd.Flags().String("dsn", "", "database DSN or remote base URL")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	tokens := auth.NewTokenMaker(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	var remoteToken catalog.TokenSource
	if cfg.Store.Kind == config.StoreRemote {
		remoteToken = tokens.Source(service, service, auth.RoleAdmin, cfg.Auth.TokenTTL)
	}

	b, err := api.OpenBackend(ctx, cfg.Store, remoteToken)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Store.Kind, err)
	}
	defer func() { _ = b.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := api.NewServices(ctx, b, log,
		catalog.WithLatency(async.Uniform(cfg.Latency.Min, cfg.Latency.Max)),
		catalog.WithLogger(log),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	limiter := kit.NewIPRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	go limiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	h := api.NewHandler(svc, api.Deps{Tokens: tokens, Limiter: limiter}, api.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	log.Info("catalog ready",
		zap.String("store", b.Kind()),
		zap.Duration("latency_min", cfg.Latency.Min),
		zap.Duration("latency_max", cfg.Latency.Max),
	)
	return kit.RunHTTPServer(ctx, cfg.Addr(), h, log)
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token for a profile id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required")
			}

			username, _ := cmd.Flags().GetString("username")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}

			tok, err := auth.NewTokenMaker(cfg.Auth.JWTSecret, cfg.Auth.Issuer).New(args[0], username, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("username", "", "username claim")
	cmd.Flags().String("role", auth.RoleUser, "role claim (user or admin)")
	cmd.Flags().Duration("ttl", 0, "token lifetime (default from config)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in fixtures into empty SQL collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store.Kind != config.StorePostgres && cfg.Store.Kind != config.StoreSQLite {
				return fmt.Errorf("seed needs a postgres or sqlite store, got %q", cfg.Store.Kind)
			}

			b, err := api.OpenBackend(cmd.Context(), cfg.Store, nil)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			svc, err := api.NewServices(cmd.Context(), b, nil)
			if err != nil {
				return err
			}
			if len(svc.Seeded) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all collections already have data")
				return nil
			}
			for _, name := range svc.Seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().String("store", "", "backend: postgres or sqlite")
	cmd.Flags().String("dsn", "", "database DSN")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
