package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/config"
	"github.com/consensus-shipyard/ipc-agent/manager"
	"github.com/consensus-shipyard/ipc-agent/server"
)

const shutdownTimeout = 30 * time.Second

var daemonCmd = &cli.Command{
	Name:  "daemon",
	Usage: "Run the agent's JSON-RPC server",
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		path, err := configPath(cctx)
		if err != nil {
			return err
		}
		rc, err := config.NewReloadableConfig(path)
		if err != nil {
			return xerrors.Errorf("loading config: %w", err)
		}

		pool, err := manager.NewPool(ctx, rc, manager.LotusFactory)
		if err != nil {
			return xerrors.Errorf("building connection pool: %w", err)
		}
		defer pool.Close()

		hnd := server.NewAgentAPI(pool)
		srv := server.NewServer(rc.Get().Server.JSONRPCAddress, hnd)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		// SIGHUP reloads the config, SIGINT and SIGTERM shut down
		sigCh := make(chan os.Signal, 2)
		signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					if err := hnd.ReloadConfig(ctx); err != nil {
						log.Errorw("reload on SIGHUP failed", "err", err)
					}
					continue
				}
				log.Infow("shutting down", "signal", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		}
	},
}

// configPath resolves the config flag, expanding a leading ~.
func configPath(cctx *cli.Context) (string, error) {
	path := cctx.String("config")
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", xerrors.Errorf("expanding config path: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}
