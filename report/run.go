package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/hhwlib/config"
	"github.com/meenmo/hhwlib/pricing/fd"
)

var log = logging.Logger("report")

// Row is one (correlation, time grid) case.
type Row struct {
	Computed  float64          `json:"computed"`
	Published *decimal.Decimal `json:"published,omitempty"`
	TimeGrid  int              `json:"timeGrid"`
	Rho       float64          `json:"rho"`
	Delta     float64          `json:"delta"`
	Gamma     float64          `json:"gamma"`
	Theta     float64          `json:"theta"`
	Elapsed   time.Duration    `json:"elapsedNs"`
}

// AbsDiff is |computed - published| rounded to four places, or nil
// without a reference.
func (r Row) AbsDiff() *decimal.Decimal {
	if r.Published == nil {
		return nil
	}
	d := decimal.NewFromFloat(r.Computed).Sub(*r.Published).Abs().Round(4)
	return &d
}

// Within reports whether the row matches its reference within tol.
func (r Row) Within(tol float64) bool {
	d := r.AbsDiff()
	return d == nil || !d.GreaterThan(decimal.NewFromFloat(tol))
}

// Run is a priced scenario.
type Run struct {
	ID        string        `json:"id"`
	Scenario  string        `json:"scenario"`
	Scheme    string        `json:"scheme"`
	Tolerance float64       `json:"tolerance"`
	Started   time.Time     `json:"started"`
	Elapsed   time.Duration `json:"elapsedNs"`
	Rows      []Row         `json:"rows"`
}

// Failures counts rows outside the tolerance.
func (r *Run) Failures() int {
	n := 0
	for _, row := range r.Rows {
		if !row.Within(r.Tolerance) {
			n++
		}
	}
	return n
}

// Execute prices every case of s with at most s.Report.Parallel cases in
// flight. Rows are ordered by correlation, then time grid.
func Execute(ctx context.Context, s *config.Scenario) (*Run, error) {
	setup, err := Prepare(s)
	if err != nil {
		return nil, err
	}
	cacheSize := s.Report.CacheSize
	if cacheSize < 1 {
		cacheSize = fd.DefaultCacheSize
	}
	cache, err := fd.NewMeshCache(cacheSize)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		Scenario:  s.Name,
		Scheme:    setup.Scheme.String(),
		Tolerance: s.Cases.Tolerance,
		Started:   time.Now(),
	}
	c := s.Cases
	rows := make([]Row, len(c.Correlations)*len(c.TimeGrids))

	g, ctx := errgroup.WithContext(ctx)
	if s.Report.Parallel > 0 {
		g.SetLimit(s.Report.Parallel)
	}
	for i, rho := range c.Correlations {
		var published *decimal.Decimal
		if len(c.Published) > 0 {
			d := decimal.NewFromFloat(c.Published[i])
			published = &d
		}
		for j, tGrid := range c.TimeGrids {
			i, j, rho, tGrid := i, j, rho, tGrid
			g.Go(func() error {
				start := time.Now()
				e := fd.NewHestonHullWhiteEngine(setup.Heston, setup.HullWhite, rho, setup.Dates,
					fd.WithGrid(tGrid, s.Grid.XGrid, s.Grid.VGrid, s.Grid.RGrid),
					fd.WithDampingSteps(s.Grid.DampingSteps),
					fd.WithScheme(setup.Scheme),
					fd.WithControlVariate(s.Grid.ControlVariate),
					fd.WithMeshCache(cache))
				res, err := e.Calculate(ctx, setup.Option)
				if err != nil {
					return errors.Wrapf(err, "rho=%v tGrid=%d", rho, tGrid)
				}
				rows[i*len(c.TimeGrids)+j] = Row{
					Computed:  res.Value,
					Published: published,
					TimeGrid:  tGrid,
					Rho:       rho,
					Delta:     res.Delta,
					Gamma:     res.Gamma,
					Theta:     res.Theta,
					Elapsed:   time.Since(start),
				}
				log.Infow("case priced", "rho", rho, "tGrid", tGrid, "value", res.Value, "elapsed", time.Since(start))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Rho != rows[b].Rho {
			return rows[a].Rho < rows[b].Rho
		}
		return rows[a].TimeGrid < rows[b].TimeGrid
	})
	run.Rows = rows
	run.Elapsed = time.Since(run.Started)
	return run, nil
}
