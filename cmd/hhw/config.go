package main

import (
	"github.com/urfave/cli/v2"

	"github.com/meenmo/hhwlib/config"
)

var configCmd = &cli.Command{
	Name:  "config",
	Usage: "scenario configuration",
	Subcommands: []*cli.Command{
		{
			Name:  "default",
			Usage: "print the built-in scenario as TOML",
			Action: func(cctx *cli.Context) error {
				b, err := config.Bytes(config.Default())
				if err != nil {
					return err
				}
				_, err = cctx.App.Writer.Write(b)
				return err
			},
		},
		{
			Name:  "show",
			Usage: "print the effective scenario after file and environment overrides",
			Action: func(cctx *cli.Context) error {
				s, err := config.FromFile(cctx.String(FlagConfig.Name))
				if err != nil {
					return err
				}
				b, err := config.Bytes(s)
				if err != nil {
					return err
				}
				_, err = cctx.App.Writer.Write(b)
				return err
			},
		},
	},
}
