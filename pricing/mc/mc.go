// Package mc is a Monte Carlo cross-check for the Heston/Hull-White PDE
// engine.
package mc

import (
	"context"
	"math"
	"runtime"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/hhwlib/instrument"
	"github.com/meenmo/hhwlib/model"
)

var log = logging.Logger("mc")

// ErrNotPositiveDefinite is returned when the three correlations are inconsistent.
var ErrNotPositiveDefinite = errors.New("correlation matrix is not positive definite")

// Config controls the simulation.
type Config struct {
	Paths   int
	Steps   int
	Workers int
	Seed    uint64
}

// DefaultConfig is 100k paths of 200 steps over all CPUs.
var DefaultConfig = Config{Paths: 100000, Steps: 200, Seed: 42}

// Result is the discounted mean payoff and its standard error.
type Result struct {
	Price  float64
	StdErr float64
	Paths  int
}

// correlation returns the lower Cholesky factor of the (S, v, y) correlation matrix.
func correlation(rhoSV, rhoSR float64) (*mat.TriDense, error) {
	sym := mat.NewSymDense(3, []float64{
		1, rhoSV, rhoSR,
		rhoSV, 1, 0,
		rhoSR, 0, 1,
	})
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errors.Wrapf(ErrNotPositiveDefinite, "rho_sv=%v rho_sr=%v", rhoSV, rhoSR)
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}

// HestonHullWhite simulates log-spot and variance with an Euler full
// truncation scheme and the Hull-White state exactly, then discounts with
// the trapezoidal integral of the short rate.
func HestonHullWhite(ctx context.Context, p *model.HestonProcess, hw *model.HullWhite, rhoSR float64, payoff instrument.Payoff, T float64, cfg Config) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if err := hw.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.Paths < 2 || cfg.Steps < 1 || !(T > 0) {
		return Result{}, errors.Errorf("mc: paths=%d steps=%d maturity=%v", cfg.Paths, cfg.Steps, T)
	}
	chol, err := correlation(p.Rho, rhoSR)
	if err != nil {
		return Result{}, err
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Paths {
		workers = cfg.Paths
	}

	dt := T / float64(cfg.Steps)
	phi := make([]float64, cfg.Steps+1)
	q := make([]float64, cfg.Steps)
	for i := range phi {
		phi[i] = hw.Phi(float64(i) * dt)
	}
	for i := range q {
		q[i] = p.Dividend.ForwardRate(float64(i)*dt, float64(i+1)*dt)
	}
	ou := hw.StateProcess()
	decay := math.Exp(-hw.A * dt)
	ySd := ou.StdDeviation(0, 0, dt)
	l := [3][3]float64{}
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			l[i][j] = chol.At(i, j)
		}
	}

	payoffs := make([]float64, cfg.Paths)
	g, ctx := errgroup.WithContext(ctx)
	chunk := (cfg.Paths + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > cfg.Paths {
			hi = cfg.Paths
		}
		if lo >= hi {
			break
		}
		seed := cfg.Seed + uint64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			for k := lo; k < hi; k++ {
				if k%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				x, v, y, integral := math.Log(p.S0), p.V0, 0.0, 0.0
				for i := 0; i < cfg.Steps; i++ {
					z0, z1, z2 := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
					w0 := l[0][0] * z0
					w1 := l[1][0]*z0 + l[1][1]*z1
					w2 := l[2][0]*z0 + l[2][1]*z1 + l[2][2]*z2

					vp := math.Max(v, 0)
					r := y + phi[i]
					x += (r-q[i]-0.5*vp)*dt + math.Sqrt(vp*dt)*w0
					v += p.Kappa*(p.Theta-vp)*dt + p.Sigma*math.Sqrt(vp*dt)*w1
					yn := y*decay + ySd*w2
					integral += 0.5 * (r + yn + phi[i+1]) * dt
					y = yn
				}
				payoffs[k] = math.Exp(-integral) * payoff.Value(math.Exp(x))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, errors.Wrap(err, "mc")
	}
	mean, sd := stat.MeanStdDev(payoffs, nil)
	res := Result{Price: mean, StdErr: stat.StdErr(sd, float64(cfg.Paths)), Paths: cfg.Paths}
	log.Debugw("simulated", "paths", cfg.Paths, "steps", cfg.Steps, "price", res.Price, "stderr", res.StdErr)
	return res, nil
}
