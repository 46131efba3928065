package command

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/tally/internal/app"
	"github.com/stolasapp/tally/internal/invoices"
	"github.com/stolasapp/tally/internal/rpc"
	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/seed"
	"github.com/stolasapp/tally/internal/server"
	"github.com/stolasapp/tally/internal/viewcache"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the invoice dashboard Web App and RPC Server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			// In dev mode, make sure there is something to look at
			if cfg.DevMode {
				if err = seed.Run(cmd.Context(), store, logger, seed.Seed()); err != nil {
					return err
				}
			}

			views := viewcache.New(cfg.ViewCache.MaxBytes, cfg.ViewCache.MaxAge, logger)
			svc := invoices.New(store, views, logger)
			auth := sec.NewAuthenticator(store, logger)

			grp, ctx := errgroup.WithContext(cmd.Context())
			start(ctx, grp, logger, "RPC", cfg.RPCAddress,
				rpc.NewServer(rpc.NewHandler(svc, logger), auth))
			start(ctx, grp, logger, "app", cfg.WebAddress,
				app.New(cfg, logger, auth, svc, views))
			return grp.Wait()
		},
	}
}

// start runs a server in grp. Failing to listen fails the whole group.
func start(
	ctx context.Context,
	grp *errgroup.Group,
	logger *slog.Logger,
	name string,
	addr string,
	handler http.Handler,
) {
	if _, err := server.Start(ctx, grp, logger, name, addr, handler); err != nil {
		grp.Go(func() error { return err })
	}
}
