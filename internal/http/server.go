package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wearefrancis/auth/internal/observability/logger"
)

const shutdownTimeout = 10 * time.Second

// Serve levanta el servidor en addr y lo apaga gracefully cuando ctx se
// cancela. Bloquea hasta que el server terminó o falló.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Named("http").Info("listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Named("http").Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
