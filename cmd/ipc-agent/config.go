package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/consensus-shipyard/ipc-agent/config"
)

var configCmd = &cli.Command{
	Name:  "config",
	Usage: "Manage the agent configuration",
	Subcommands: []*cli.Command{
		configInitCmd,
		configValidateCmd,
	},
}

var configInitCmd = &cli.Command{
	Name:  "init",
	Usage: "Write a default config file",
	Action: func(cctx *cli.Context) error {
		path, err := configPath(cctx)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return xerrors.Errorf("config file %s already exists", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return xerrors.Errorf("creating config dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
			return xerrors.Errorf("writing config: %w", err)
		}
		log.Infow("wrote default config", "path", path)
		return nil
	},
}

var configValidateCmd = &cli.Command{
	Name:  "validate",
	Usage: "Check that the config file parses",
	Action: func(cctx *cli.Context) error {
		path, err := configPath(cctx)
		if err != nil {
			return err
		}
		cfg, err := config.FromFile(path)
		if err != nil {
			return err
		}
		log.Infow("config is valid", "path", path, "subnets", len(cfg.Subnets))
		return nil
	},
}
