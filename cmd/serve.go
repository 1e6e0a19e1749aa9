package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	apisoh "github.com/kilianp07/batlife/api/soh"
	"github.com/kilianp07/batlife/app"
	"github.com/kilianp07/batlife/infra/logger"
	"github.com/kilianp07/batlife/infra/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the estimation API and /metrics until interrupted",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "address", "", "listen address (default api.address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.API.Address = serveAddr
	}
	strategy, err := cfg.Battery.ParsedStrategy()
	if err != nil {
		return err
	}
	log := logger.New("server")
	svc, err := app.Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	router := apisoh.NewRouter(svc, apisoh.Defaults{NominalKWh: cfg.Battery.NominalKWh, Strategy: strategy}, cfg.API.Token)
	router.Use(apisoh.Recoverer(svc.Reporter()))
	srv := &http.Server{Addr: cfg.API.Address, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	metricsErr := make(chan error, 1)
	if cfg.Metrics.Address == "" {
		router.Handle("/metrics", metrics.Handler())
	} else {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.Address); err != nil {
				metricsErr <- err
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.API.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case err := <-metricsErr:
		_ = srv.Close()
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Infof("server stopped")
	return nil
}
