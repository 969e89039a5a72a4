package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

// RunWithGracefulShutdown runs the server and handles graceful shutdown on
// SIGINT or SIGTERM signals or when the context is cancelled.
func RunWithGracefulShutdown(ctx context.Context, srv *Server, log logger.Logger) error {
	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(serveCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	}

	cancelServe()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.cfg.ShutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server",
		logger.Duration("timeout", srv.cfg.ShutdownTimeout),
		logger.Int("open_connections", srv.ActiveConnections()),
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}
