package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/config"
	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/db"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/seal"
	"github.com/cyberarian/rekama-sys/pkg/server"
	"github.com/cyberarian/rekama-sys/pkg/server/endpoints"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 15 * time.Second
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Rekama application server",
	Long: `Run the Rekama application server.

The storage backend, listen address, token secret and connector sync
interval come from the configuration (see "rekamactl configuration show").
When no token_secret is configured a random one is generated; tokens then
stop working when the server restarts, as do the sessions they name.

With the database backend, migrations are run on startup. Use --no-migrate
to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServer(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "", "server listen port (overrides configuration)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides configuration)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	needsMigrations := cfg.AuditDatabaseURL != "" ||
		(cfg.StorageBackend == config.StorageDatabase && !db.IsSQLite(cfg.DatabaseURL))
	if needsMigrations && !noMigrate {
		fmt.Println("Running database migrations...")
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	caller, err := a.caller(cmd)
	if err != nil {
		return err
	}

	secret := []byte(a.cfg.TokenSecret)
	if len(secret) == 0 {
		if secret, err = seal.RandomBytes(32); err != nil {
			return fmt.Errorf("failed to generate token secret: %w", err)
		}
		a.logger.Warn("no token_secret configured; using a random secret")
	}

	sessions := identity.NewSessions(a.store,
		identity.WithIdleTimeout(a.cfg.IdleTimeout()),
		identity.WithSessionGate(a.gate),
		identity.WithSessionLogger(a.logger),
	)
	go sessions.Run(ctx, sessionSweepInterval)

	scheduler := connector.NewScheduler(a.engine, caller, a.cfg.SyncPeriod(), a.logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	host, port := a.cfg.BindAddress, strconv.Itoa(a.cfg.Port)
	if v, _ := cmd.Flags().GetString("bind-address"); v != "" {
		host = v
	}
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		port = v
	}

	s := server.NewServer(server.Options{
		Service:    a.service,
		Connectors: a.engine,
		Sessions:   sessions,
		Tokens:     identity.NewTokenIssuer(secret, a.cfg.TokenLifetime()),
		Metrics:    a.metrics,
		Config:     a.cfg,
		Logger:     a.logger,
	}, host, port)
	endpoints.RegisterAll(s)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "address", s.Addr(), "storage_backend", a.cfg.StorageBackend)
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := a.store.Flush(shutdownCtx); err != nil {
		a.logger.Error("final snapshot failed", "error", err)
	}
	return <-errCh
}
