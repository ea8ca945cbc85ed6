// Package server runs the HTTP and gRPC listeners until the process is
// asked to stop, then drains them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	grpcserver "github.com/shashiranjanraj/groupcart/pkg/grpc"
)

const defaultShutdownTimeout = 15 * time.Second

// Options configures Run.
type Options struct {
	Addr    string
	Handler http.Handler

	// GRPCPort enables the gRPC health server when set.
	GRPCPort string
	Probe    grpcserver.Probe

	ShutdownTimeout time.Duration
	Log             *slog.Logger
}

// Run serves until ctx is cancelled or a listener fails. In-flight requests
// get ShutdownTimeout to finish.
func Run(ctx context.Context, opts Options) error {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	lis, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", opts.Addr, err)
	}

	var gs *grpcserver.Server
	if opts.GRPCPort != "" {
		if gs, err = grpcserver.Start(opts.GRPCPort, opts.Probe, log); err != nil {
			_ = lis.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		gs.Stop()
		if err != nil {
			return fmt.Errorf("server: http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	gs.Stop()
	if err != nil {
		return fmt.Errorf("server: http shutdown: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}
