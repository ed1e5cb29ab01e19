package main

import (
	"context"

	"github.com/finkeeper/finkeeper/internal/config"
	"github.com/finkeeper/finkeeper/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return nil, err
	}
	return closer.Shutdown, nil
}
