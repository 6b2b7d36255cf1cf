package market

import (
	"fmt"
	"math"
	"time"
)

// BlackScholesProcess is geometric Brownian motion with deterministic rates and volatility.
// Times are year fractions on the risk-free curve's day counter; the curves are expected to
// share it.
type BlackScholesProcess struct {
	Spot     float64
	RiskFree YieldTermStructure
	Dividend YieldTermStructure
	Vol      BlackVolTermStructure
}

func NewBlackScholesProcess(spot float64, riskFree, dividend YieldTermStructure, vol BlackVolTermStructure) (*BlackScholesProcess, error) {
	if !(spot > 0) {
		return nil, fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidTermStructure, spot)
	}
	if riskFree == nil || dividend == nil || vol == nil {
		return nil, fmt.Errorf("%w: missing curve", ErrInvalidTermStructure)
	}
	return &BlackScholesProcess{Spot: spot, RiskFree: riskFree, Dividend: dividend, Vol: vol}, nil
}

// ReferenceDate is the volatility reference date.
func (p *BlackScholesProcess) ReferenceDate() time.Time { return p.Vol.ReferenceDate() }

// Time is the risk-free year fraction from its reference date to d.
func (p *BlackScholesProcess) Time(d time.Time) float64 {
	return p.RiskFree.DayCounter().YearFraction(p.RiskFree.ReferenceDate(), d)
}

func (p *BlackScholesProcess) X0() float64 { return p.Spot }

// variance of the log increment, read at the current state as strike
func (p *BlackScholesProcess) variance(t, x, dt float64) float64 {
	return math.Max(p.Vol.BlackVariance(t+dt, x)-p.Vol.BlackVariance(t, x), 0)
}

func (p *BlackScholesProcess) StdDeviation(t, x, dt float64) float64 {
	return math.Sqrt(p.variance(t, x, dt))
}

func (p *BlackScholesProcess) Evolve(t, x, dt, dw float64) float64 {
	v := p.variance(t, x, dt)
	drift := math.Log(p.RiskFree.Discount(t)/p.RiskFree.Discount(t+dt)) -
		math.Log(p.Dividend.Discount(t)/p.Dividend.Discount(t+dt)) - 0.5*v
	return x * math.Exp(drift+math.Sqrt(v)*dw)
}
