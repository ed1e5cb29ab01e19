package main

import (
	"context"

	"github.com/finkeeper/finkeeper/internal/config"
	pg "github.com/finkeeper/finkeeper/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.New(ctx, cfg.DB)
}
