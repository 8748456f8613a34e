package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/database"
	"github.com/Byte-Craftsman-Alpha/Paranox/logger"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/routes"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
	"github.com/Byte-Craftsman-Alpha/Paranox/storage"
	"github.com/Byte-Craftsman-Alpha/Paranox/store"
	"github.com/Byte-Craftsman-Alpha/Paranox/tracer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paranox",
		Short: "Paranox healthcare records API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "Warning: .env file not found, using system environment variables")
			}
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables for the postgres store driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log, cfg.App)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			return database.Migrate(db, log)
		},
	}
}

func runServer() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("paranox", reg)

	st, objects, err := openBackends(cfg, log)
	if err != nil {
		return err
	}
	svcs := services.New(store.Instrument(st, m), objects, cfg, m, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(config.CORSMiddleware(cfg))
	routes.SetupRoutes(router, svcs, cfg, m, reg, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("strict_recheck", cfg.Access.StrictRecheck),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openBackends picks the record store and the attachment store from config.
func openBackends(cfg *config.Config, log *zap.Logger) (store.Store, storage.ObjectStore, error) {
	var client *supa.Client
	supabase := func() (*supa.Client, error) {
		if client != nil {
			return client, nil
		}
		c, err := config.NewSupabaseClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing supabase client: %w", err)
		}
		client = c
		return client, nil
	}

	var st store.Store
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		st = store.NewPostgresStore(db)
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		c, err := supabase()
		if err != nil {
			return nil, nil, err
		}
		st = store.NewSupabaseStore(c)
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return st, storage.NewMemoryStorage("http://localhost/" + cfg.Storage.Bucket), nil
	default:
		c, err := supabase()
		if err != nil {
			return nil, nil, err
		}
		return st, storage.NewSupabaseStorage(c, cfg.Storage.Bucket), nil
	}
}
