// Package commands implements the cumulus CLI subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/adtisdal-ASDC/cumulus/internal/config"
	"github.com/adtisdal-ASDC/cumulus/internal/store/postgres"
)

// openStore loads the project config from the working directory and connects
// to Postgres.
func openStore(ctx context.Context) (*postgres.Store, *config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return st, cfg, nil
}
