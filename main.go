package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/pharmacie-api/auth"
	"github.com/giygas/pharmacie-api/catalog"
	"github.com/giygas/pharmacie-api/config"
	"github.com/giygas/pharmacie-api/handlers"
	"github.com/giygas/pharmacie-api/health"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/kvstore"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/repository"
	"github.com/giygas/pharmacie-api/scheduler"
	"github.com/giygas/pharmacie-api/seed"
	"github.com/giygas/pharmacie-api/server"
	"github.com/giygas/pharmacie-api/validation"
	"github.com/giygas/pharmacie-api/workflow"
	"github.com/spf13/cobra"
)

// app is everything a command needs once the store is open.
type app struct {
	cfg       *config.Config
	store     interfaces.TransactionalKVStore
	repos     *repository.Repositories
	validator *validation.DataValidatorImpl
	catalog   *catalog.Service
	workflow  *workflow.Service
	reporter  *health.Reporter
}

func newApp(ctx context.Context) (*app, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.InitLogger(cfg)

	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repos := repository.New(store)
	v := validation.NewDataValidator()
	cat := catalog.NewService(repos, v)
	wf := workflow.NewService(repos, v)

	return &app{
		cfg:       cfg,
		store:     store,
		repos:     repos,
		validator: v,
		catalog:   cat,
		workflow:  wf,
		reporter:  health.NewReporter(repos, cat, wf, v, cfg.LowStockThreshold),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logging.Error("Failed to close store", "error", err)
	}
	_ = logging.Close()
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pharmacie-api",
		Short: "Pharmacy ordering API",
		// serve is what a bare invocation does
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(recoverCmd())
	rootCmd.AddCommand(importCatalogCmd())
	rootCmd.AddCommand(reportCmd())
	return rootCmd
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.SeedOnStart {
		if _, err := seed.Run(ctx, a.repos, false); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	sched := scheduler.NewScheduler(a.workflow, a.reporter, a.cfg.RecoveryInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	handler := handlers.NewHTTPHandler(handlers.Deps{
		Auth:              auth.NewAuthenticator(a.repos),
		Tokens:            auth.NewIssuer(a.cfg.JWTSecret, a.cfg.TokenTTL),
		Catalog:           a.catalog,
		Workflow:          a.workflow,
		Patients:          a.workflow,
		Validator:         a.validator,
		Health:            health.NewHealthChecker(a.store, a.repos, 2*a.cfg.RecoveryInterval),
		Reporter:          a.reporter,
		LowStockThreshold: a.cfg.LowStockThreshold,
	})
	srv := server.NewServer(a.cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case err := <-serveErr:
		if err != nil {
			logging.Error("Server failed", "error", err)
			return err
		}
		return nil
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
