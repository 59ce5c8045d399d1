package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/meenmo/hhwlib/config"
	"github.com/meenmo/hhwlib/report"
	"github.com/meenmo/hhwlib/report/pgsql"
)

var tableCmd = &cli.Command{
	Name:  "table",
	Usage: "price every (rho, time grid) case and compare with the published prices",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the run as JSON instead of a table",
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "postgres connection string to store the run in",
			EnvVars: []string{"HHW_REPORT_DSN"},
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "cases priced concurrently, 0 keeps the scenario value",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "exit with an error when a case is outside the tolerance",
		},
	},
	Action: func(cctx *cli.Context) error {
		s, err := config.FromFile(cctx.String(FlagConfig.Name))
		if err != nil {
			return err
		}
		if n := cctx.Int("parallel"); n > 0 {
			s.Report.Parallel = n
		}
		if dsn := cctx.String("dsn"); dsn != "" {
			s.Report.DSN = dsn
		}

		run, err := report.Execute(cctx.Context, s)
		if err != nil {
			return err
		}
		if s.Report.DSN != "" {
			if err := store(cctx, s.Report.DSN, run); err != nil {
				return err
			}
		}

		if cctx.Bool("json") {
			err = run.WriteJSON(cctx.App.Writer)
		} else {
			err = run.Render(cctx.App.Writer)
		}
		if err != nil {
			return err
		}
		if n := run.Failures(); n > 0 {
			log.Warnw("cases outside tolerance", "count", n, "tolerance", run.Tolerance)
			if cctx.Bool("strict") {
				return errors.Errorf("%d cases outside tolerance %v", n, run.Tolerance)
			}
		}
		return nil
	},
}

func store(cctx *cli.Context, dsn string, run *report.Run) error {
	db, err := pgsql.Open(cctx.Context, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(cctx.Context); err != nil {
		return err
	}
	return db.SaveRun(cctx.Context, run)
}
