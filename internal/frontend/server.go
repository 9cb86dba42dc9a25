package frontend

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve starts the browser front end and blocks until ctx is cancelled or
// the listener fails.
func Serve(ctx context.Context, cfg Config) error {
	if ctx == nil {
		return errors.New("frontend: context is nil")
	}
	if cfg.Addr == "" {
		return errors.New("frontend: addr is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	cfg.logger().Info("frontend listening", "addr", cfg.Addr, "backend", cfg.Client.BaseURL())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}
		return err
	}
}
