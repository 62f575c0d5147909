package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/boatbooking/api"
	"github.com/Domenick1991/boatbooking/config"
	"github.com/Domenick1991/boatbooking/internal/service/booking"
	"github.com/Domenick1991/boatbooking/internal/service/trips"
)

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, tripSvc trips.TripUseCase, bookingSvc booking.BookingUseCase) error {
	srv := newServer(cfg, log, tripSvc, bookingSvc)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSeconds)*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg *config.Config, log *slog.Logger, tripSvc trips.TripUseCase, bookingSvc booking.BookingUseCase) *http.Server {
	router := api.NewRouter(api.RouterConfig{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		SwaggerDir:  cfg.HTTP.SwaggerDir,
	}, log, tripSvc, bookingSvc)

	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
