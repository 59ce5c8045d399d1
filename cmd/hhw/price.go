package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/meenmo/hhwlib/config"
	"github.com/meenmo/hhwlib/pricing/analytic"
	"github.com/meenmo/hhwlib/pricing/fd"
	"github.com/meenmo/hhwlib/report"
)

// FlagRho is the equity/short-rate correlation shared by price and mc.
var FlagRho = &cli.Float64Flag{
	Name:  "rho",
	Usage: "equity/short-rate correlation",
	Value: 0,
}

var priceCmd = &cli.Command{
	Name:  "price",
	Usage: "price the scenario option for a single correlation",
	Flags: []cli.Flag{
		FlagRho,
		&cli.IntFlag{
			Name:  "tgrid",
			Usage: "time steps",
			Value: 50,
		},
		&cli.StringFlag{
			Name:  "scheme",
			Usage: "Hundsdorfer, Douglas, CraigSneyd, ModifiedCraigSneyd, ImplicitEuler or ExplicitEuler",
		},
		&cli.BoolFlag{
			Name:  "no-cv",
			Usage: "disable the Heston control variate",
		},
	},
	Action: func(cctx *cli.Context) error {
		s, err := config.FromFile(cctx.String(FlagConfig.Name))
		if err != nil {
			return err
		}
		if name := cctx.String("scheme"); name != "" {
			s.Grid.Scheme = name
		}
		setup, err := report.Prepare(s)
		if err != nil {
			return err
		}
		rho := cctx.Float64(FlagRho.Name)

		start := time.Now()
		e := fd.NewHestonHullWhiteEngine(setup.Heston, setup.HullWhite, rho, setup.Dates,
			fd.WithGrid(cctx.Int("tgrid"), s.Grid.XGrid, s.Grid.VGrid, s.Grid.RGrid),
			fd.WithDampingSteps(s.Grid.DampingSteps),
			fd.WithScheme(setup.Scheme),
			fd.WithControlVariate(s.Grid.ControlVariate && !cctx.Bool("no-cv")))
		res, err := e.Calculate(cctx.Context, setup.Option)
		if err != nil {
			return err
		}

		w := cctx.App.Writer
		fmt.Fprintf(w, "scheme  %s\n", setup.Scheme)
		fmt.Fprintf(w, "rho     %.2f\n", rho)
		fmt.Fprintf(w, "value   %.6f\n", res.Value)
		fmt.Fprintf(w, "delta   %.6f\n", res.Delta)
		fmt.Fprintf(w, "gamma   %.6f\n", res.Gamma)
		fmt.Fprintf(w, "theta   %.6f\n", res.Theta)
		if rho == 0 {
			ref, err := analytic.HestonHullWhite(setup.Heston, setup.HullWhite, setup.Option.Payoff, setup.Maturity)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "lewis   %.6f\n", ref)
		}
		fmt.Fprintf(w, "elapsed %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}
