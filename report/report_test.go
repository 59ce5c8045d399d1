package report_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/hhwlib/config"
	"github.com/meenmo/hhwlib/report"
)

func TestPrepareDefault(t *testing.T) {
	t.Parallel()
	setup, err := report.Prepare(config.Default())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, setup.Maturity, 1e-12)
	assert.Equal(t, "Hundsdorfer", setup.Scheme.String())
	assert.Equal(t, 100.0, setup.Option.Payoff.Strike)
	assert.Same(t, setup.Heston.RiskFree, setup.HullWhite.Curve)
}

func TestPrepareZeroCurve(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.Market.ZeroTenors = []string{"2Y", "6M"}
	s.Market.ZeroRates = []float64{0.05, 0.03}
	setup, err := report.Prepare(s)
	require.NoError(t, err)
	r := setup.Heston.RiskFree
	assert.InDelta(t, 0.03, r.ZeroRate(0.1), 1e-12)
	assert.InDelta(t, 0.05, r.ZeroRate(5), 1e-12)
	mid := r.ZeroRate(1)
	assert.Greater(t, mid, 0.03)
	assert.Less(t, mid, 0.05)
	assert.Same(t, r, setup.HullWhite.Curve)
}

func TestPrepareBermudan(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.Option.Exercise = "Bermudan"
	s.Option.ExerciseTenors = []string{"6M", "3M", "9M"}
	setup, err := report.Prepare(s)
	require.NoError(t, err)
	times := setup.Dates.ExerciseTimes(setup.Option)
	require.Len(t, times, 4)
	assert.InDelta(t, 92.0/365, times[0], 1e-12)
	assert.InDelta(t, 1.0, times[3], 1e-12)

	s.Option.ExerciseTenors = []string{"18M"}
	_, err = report.Prepare(s)
	assert.Error(t, err)
}

func TestPrepareRejects(t *testing.T) {
	t.Parallel()
	for name, mutate := range map[string]func(*config.Scenario){
		"date":     func(s *config.Scenario) { s.EvaluationDate = "02/06/2014" },
		"daycount": func(s *config.Scenario) { s.DayCount = "BUS/252" },
		"scheme":   func(s *config.Scenario) { s.Grid.Scheme = "Crank" },
		"bermudan": func(s *config.Scenario) { s.Option.Exercise = "Bermudan" },
		"feller":   func(s *config.Scenario) { s.Heston.Sigma = -1 },
		"tenor":    func(s *config.Scenario) { s.Option.Tenor = "1X" },
		"pillar":   func(s *config.Scenario) { s.Market.ZeroTenors, s.Market.ZeroRates = []string{"Q"}, []float64{0.01} },
	} {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := config.Default()
			mutate(s)
			_, err := report.Prepare(s)
			assert.Error(t, err)
		})
	}
}

func TestExecuteRejectsShortPublished(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.Cases.Published = []float64{11.38}
	_, err := report.Prepare(s)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	_, err = report.Execute(context.Background(), s)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestExecuteOrdersRows(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.Grid.XGrid, s.Grid.VGrid, s.Grid.RGrid = 24, 10, 8
	s.Grid.DampingSteps = 0
	s.Cases.Correlations = []float64{0.5, -0.5}
	s.Cases.TimeGrids = []int{20, 10}
	s.Cases.Published = []float64{14.08, 11.38}
	s.Cases.Tolerance = 1
	s.Report.Parallel = 2

	run, err := report.Execute(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, run.Rows, 4)
	assert.NotEmpty(t, run.ID)

	assert.Equal(t, -0.5, run.Rows[0].Rho)
	assert.Equal(t, 10, run.Rows[0].TimeGrid)
	assert.Equal(t, 20, run.Rows[1].TimeGrid)
	assert.Equal(t, 0.5, run.Rows[3].Rho)
	assert.True(t, run.Rows[0].Published.Equal(decimal.RequireFromString("11.38")))
	for _, row := range run.Rows {
		assert.Greater(t, row.Computed, 5.0)
		assert.Less(t, row.Computed, 25.0)
	}
	assert.Less(t, run.Rows[0].Computed, run.Rows[3].Computed)
}

func TestExecuteCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := report.Execute(ctx, config.Default())
	assert.Error(t, err)
}

func sampleRun() *report.Run {
	pub := decimal.RequireFromString("12.81")
	return &report.Run{
		ID:        "run-1",
		Scheme:    "Hundsdorfer",
		Tolerance: 0.05,
		Elapsed:   1500 * time.Millisecond,
		Rows: []report.Row{
			{Computed: 12.8012, Published: &pub, TimeGrid: 50, Rho: 0},
			{Computed: 12.9, Published: &pub, TimeGrid: 100, Rho: 0},
			{Computed: 11.0, TimeGrid: 150, Rho: 0.25},
		},
	}
}

func TestRowDiff(t *testing.T) {
	t.Parallel()
	run := sampleRun()
	assert.Equal(t, "0.0088", run.Rows[0].AbsDiff().StringFixed(4))
	assert.True(t, run.Rows[0].Within(run.Tolerance))
	assert.False(t, run.Rows[1].Within(run.Tolerance))
	assert.Nil(t, run.Rows[2].AbsDiff())
	assert.Equal(t, 1, run.Failures())
}

func TestRecords(t *testing.T) {
	t.Parallel()
	recs := sampleRun().Records()
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"12.8012", "12.81", "50", "0.00", "0.0088"}, recs[0])
	assert.Equal(t, []string{"11.0000", "-", "150", "0.25", "-"}, recs[2])
}

func TestRender(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, sampleRun().Render(&buf))
	out := buf.String()
	for _, h := range report.Header {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "12.8012")
	assert.True(t, strings.HasSuffix(out, "1 outside 0.05, 1.5s\n"), out)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, sampleRun().WriteJSON(&buf))
	out := buf.String()
	assert.Contains(t, out, `"id": "run-1"`)
	assert.Contains(t, out, `"published": "12.81"`)
	assert.Contains(t, out, `"timeGrid": 150`)
}
