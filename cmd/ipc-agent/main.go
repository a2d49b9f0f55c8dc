package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("ipc-agent")

// BuildVersion is the agent version, overridable at link time.
var BuildVersion = "0.1.0"

func main() {
	local := []*cli.Command{
		daemonCmd,
		configCmd,
		versionCmd,
	}

	app := &cli.App{
		Name:    "ipc-agent",
		Usage:   "daemon orchestrating operations across a hierarchy of IPC subnets",
		Version: BuildVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"IPC_AGENT_CONFIG"},
				Usage:   "path of the agent config file",
				Value:   "~/.ipc-agent/config.toml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"IPC_AGENT_LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(cctx *cli.Context) error {
			return logging.SetLogLevelRegex(".*", cctx.String("log-level"))
		},
		Commands: local,
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorw("exit in error", "err", err)
		os.Exit(1)
		return
	}
}

var versionCmd = &cli.Command{
	Name:  "version",
	Usage: "Print version",
	Action: func(cctx *cli.Context) error {
		cli.VersionPrinter(cctx)
		return nil
	},
}
