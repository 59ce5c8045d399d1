package fd

import (
	"fmt"
	"math"
	"reflect"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/fdm/mesher"
	"github.com/meenmo/hhwlib/model"
	"github.com/meenmo/hhwlib/termstructure"
)

// DefaultCacheSize bounds the number of cached one-dimensional meshes.
const DefaultCacheSize = 256

// MeshCache shares immutable 1-D meshes between engine runs with equal
// parameters. It is safe for concurrent use.
type MeshCache struct {
	c *lru.Cache
}

// NewMeshCache holds up to size 1-D meshes.
func NewMeshCache(size int) (*MeshCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "mesh cache")
	}
	return &MeshCache{c: c}, nil
}

type varianceKey struct {
	size                         int
	v0, kappa, theta, sigma, mat float64
	tAvgSteps                    int
}

type equityKey struct {
	size                        int
	spot, vol, maturity, strike float64
	rTS, qTS                    termstructure.YieldCurve
}

type rateKey struct {
	size          int
	a, sigma, mat float64
}

func cacheable(c termstructure.YieldCurve) bool {
	return c != nil && reflect.TypeOf(c).Comparable()
}

func (m *MeshCache) get(key interface{}, build func() (interface{}, error)) (interface{}, error) {
	if m == nil {
		return build()
	}
	if v, ok := m.c.Get(key); ok {
		log.Debugw("mesh cache hit", "key", fmt.Sprintf("%T", key))
		return v, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	m.c.Add(key, v)
	return v, nil
}

// Variance returns the Heston variance mesh.
func (m *MeshCache) Variance(size int, p *model.HestonProcess, maturity float64, tAvgSteps int) (*mesher.VarianceGrid, error) {
	key := varianceKey{size, p.V0, p.Kappa, p.Theta, p.Sigma, maturity, tAvgSteps}
	v, err := m.get(key, func() (interface{}, error) {
		return mesher.HestonVariance(size, p, maturity, tAvgSteps, 1e-4)
	})
	if err != nil {
		return nil, err
	}
	return v.(*mesher.VarianceGrid), nil
}

// Equity returns the log-spot mesh concentrated at the strike.
func (m *MeshCache) Equity(size int, p *model.HestonProcess, vol, maturity, strike float64) (*mesher.Grid, error) {
	build := func() (interface{}, error) {
		return mesher.BlackScholes(mesher.BlackScholesParams{
			Size:       size,
			Spot:       p.S0,
			RiskFree:   p.RiskFree,
			Dividend:   p.Dividend,
			Volatility: vol,
			Maturity:   maturity,
			CPoint:     strike,
			CDensity:   0.1,
		})
	}
	if !cacheable(p.RiskFree) || !cacheable(p.Dividend) {
		m = nil
	}
	v, err := m.get(equityKey{size, p.S0, vol, maturity, strike, p.RiskFree, p.Dividend}, build)
	if err != nil {
		return nil, err
	}
	return v.(*mesher.Grid), nil
}

// Rate returns the mesh for the Hull-White state y.
func (m *MeshCache) Rate(size int, hw *model.HullWhite, maturity float64) (*mesher.Grid, error) {
	v, err := m.get(rateKey{size, hw.A, hw.Sigma, maturity}, func() (interface{}, error) {
		return mesher.SimpleProcess(size, hw.StateProcess(), 0, maturity, 10, 1e-4, math.NaN())
	})
	if err != nil {
		return nil, err
	}
	return v.(*mesher.Grid), nil
}

// Len is the number of cached meshes.
func (m *MeshCache) Len() int {
	if m == nil {
		return 0
	}
	return m.c.Len()
}
