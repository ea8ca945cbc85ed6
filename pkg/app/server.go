package app

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/groupcart/app/controllers"
	"github.com/shashiranjanraj/groupcart/config"
	"github.com/shashiranjanraj/groupcart/internal/server"
)

// Serve runs the HTTP and gRPC servers until ctx ends, then closes a.
func (a *Application) Serve(ctx context.Context) error {
	h, err := a.Handler()
	if err != nil {
		return errors.Join(err, a.Close(context.Background()))
	}

	runErr := server.Run(ctx, server.Options{
		Addr:     ":" + config.AppPort(),
		Handler:  h,
		GRPCPort: config.GRPCPort(),
		Probe:    controllers.NewHealthController(a.Infra.DB).Ping,
		Log:      a.Log,
	})

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return errors.Join(runErr, a.Close(closeCtx))
}
