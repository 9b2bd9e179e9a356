package main

import (
	"net/http"
	"os"

	"github.com/xelth-com/brokerledger/internal/logger"
)

// serve runs server until a signal arrives or the listener fails. It
// returns the listener error, or nil after a signal; the caller shuts down.
func serve(server *http.Server, signals <-chan os.Signal, log *logger.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case sig := <-signals:
		log.Info("Shutting down gracefully", "signal", sig.String())
		return nil
	case err := <-serverErr:
		log.Error("HTTP server failed", "error", err)
		return err
	}
}
