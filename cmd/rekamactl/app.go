package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyberarian/rekama-sys/pkg/audit"
	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/config"
	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/db"
	"github.com/cyberarian/rekama-sys/pkg/durability"
	gormbackend "github.com/cyberarian/rekama-sys/pkg/durability/gorm"
	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	rlog "github.com/cyberarian/rekama-sys/pkg/log"
	"github.com/cyberarian/rekama-sys/pkg/metrics"
	"github.com/cyberarian/rekama-sys/pkg/seal"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// app holds the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	gate    *authz.Gate
	store   *store.Store
	service *governance.Service
	engine  *connector.Engine
	closers []io.Closer
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openApp loads the configuration, opens the storage backend and the record
// store, and wires the audit mirrors and metrics.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := rlog.New(rlog.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New(), gate: authz.NewGate()}
	a.gate.OnDeny = a.metrics.AuthzDenied
	a.closers = append(a.closers, logCloser)

	backend, err := a.openBackend()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []store.Option{
		store.WithLogger(logger),
		store.WithObserver(a.metrics),
		store.WithSink(a.metrics),
	}
	mirror, err := a.openMirror()
	if err != nil {
		a.Close()
		return nil, err
	}
	if mirror != nil {
		opts = append(opts, store.WithSink(mirror))
	}

	a.store, err = store.Open(ctx, backend, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	a.service = governance.New(a.store,
		governance.WithGate(a.gate),
		governance.WithLogger(logger),
	)
	a.engine = connector.NewEngine(a.store,
		connector.WithGate(a.gate),
		connector.WithLogger(logger),
		connector.WithObserver(a.metrics),
	)
	return a, nil
}

func (a *app) openBackend() (durability.Backend, error) {
	var backend durability.Backend
	switch a.cfg.StorageBackend {
	case config.StorageMemory:
		a.logger.Warn("memory storage backend selected; nothing is persisted")
		return durability.NewMemory(), nil
	case config.StorageFile:
		backend = durability.NewFile(a.cfg.SnapshotPath)
	case config.StorageDatabase:
		gdb, err := db.Connect(db.Config{URL: a.cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		b := gormbackend.NewBackend(gdb, "")
		if db.IsSQLite(a.cfg.DatabaseURL) {
			if err := b.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("failed to create snapshot table: %w", err)
			}
		}
		backend = b
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.StorageBackend)
	}

	key, err := a.cfg.DataKeyBytes()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return backend, nil
	}
	cipher, err := seal.New(key)
	if err != nil {
		return nil, fmt.Errorf("unable to initiate cipher: %w", err)
	}
	return durability.NewSealed(backend, cipher), nil
}

// openMirror returns nil when neither audit mirror is configured.
func (a *app) openMirror() (*audit.Mirror, error) {
	mirror := &audit.Mirror{}
	if a.cfg.AuditSyslog {
		mirror.Logger = audit.NewLogger()
	}
	sqlSink, err := audit.OpenSQLSink(a.cfg.AuditDatabaseURL, a.logger)
	if err != nil {
		return nil, err
	}
	if sqlSink != nil {
		a.closers = append(a.closers, sqlSink)
		mirror.SQL = sqlSink
	}
	if mirror.Logger == nil && mirror.SQL == nil {
		return nil, nil
	}
	return mirror, nil
}

// caller resolves the --as flag to a stored user.
func (a *app) caller(cmd *cobra.Command) (*identity.Identity, error) {
	userID, _ := cmd.Flags().GetString("as")
	u, err := a.store.User(userID)
	if err != nil {
		return nil, fmt.Errorf("unknown user %q: %w", userID, err)
	}
	return identity.FromProfile(u), nil
}

// Close releases everything openApp opened, newest first.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cleanup failed: %v\n", err)
	}
}

// mustOpen opens the app and the --as identity or exits.
func mustOpen(cmd *cobra.Command) (*app, *identity.Identity) {
	a, err := openApp(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	caller, err := a.caller(cmd)
	if err != nil {
		a.Close()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	return a, caller
}
