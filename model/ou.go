package model

import "math"

const epsilon = 2.220446049250313e-16

// OrnsteinUhlenbeck is dx = a(level - x)dt + sigma dW.
type OrnsteinUhlenbeck struct {
	Speed      float64
	Volatility float64
	X0         float64
	Level      float64
}

// Expectation is E[x(t0+dt) | x(t0) = x0].
func (p *OrnsteinUhlenbeck) Expectation(_, x0, dt float64) float64 {
	return p.Level + (x0-p.Level)*math.Exp(-p.Speed*dt)
}

// Variance is Var[x(t0+dt) | x(t0)].
func (p *OrnsteinUhlenbeck) Variance(_, _, dt float64) float64 {
	if p.Speed < math.Sqrt(epsilon) {
		return p.Volatility * p.Volatility * dt
	}
	return 0.5 * p.Volatility * p.Volatility / p.Speed * (1 - math.Exp(-2*p.Speed*dt))
}

// StdDeviation is the square root of Variance.
func (p *OrnsteinUhlenbeck) StdDeviation(t0, x0, dt float64) float64 {
	return math.Sqrt(p.Variance(t0, x0, dt))
}

// Evolve maps a standard normal draw dw to the state at t0+dt.
func (p *OrnsteinUhlenbeck) Evolve(t0, x0, dt, dw float64) float64 {
	return p.Expectation(t0, x0, dt) + p.StdDeviation(t0, x0, dt)*dw
}
