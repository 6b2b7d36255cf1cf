package engine

import (
	"fmt"
	"math"

	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/mc"
	"github.com/banachtech/zebra-digital/payoff"
)

// DigitalPathPricer values an American digital on a discretely sampled path. Between two
// sampled points that stay short of the strike, the Brownian bridge probability of touching
// it is compared with one uniform draw per step. A touch found inside a step is timed at
// the end of that step, which is when a payoff at hit is discounted from.
type DigitalPathPricer struct {
	payoff         payoff.StrikedTypePayoff
	cash           float64
	asset          bool
	payoffAtExpiry bool
	process        *market.BlackScholesProcess
	uniforms       mc.Sequence
}

// NewDigitalPathPricer expects a uniform sequence with one dimension per time step.
func NewDigitalPathPricer(p payoff.StrikedTypePayoff, payoffAtExpiry bool, process *market.BlackScholesProcess, uniforms mc.Sequence) (*DigitalPathPricer, error) {
	pp := &DigitalPathPricer{payoff: p, payoffAtExpiry: payoffAtExpiry, process: process, uniforms: uniforms}
	switch p := p.(type) {
	case *payoff.CashOrNothing:
		pp.cash = p.Cash
	case *payoff.AssetOrNothing:
		pp.asset = true
	default:
		return nil, fmt.Errorf("%w: %s payoff, digital required", ErrInvalidPayoffType, p.Name())
	}
	return pp, nil
}

func (pp *DigitalPathPricer) Price(path mc.Path) float64 {
	u := pp.uniforms.Next()
	if len(u) != path.Len()-1 {
		panic(fmt.Sprintf("engine: %d uniforms for a path of %d steps", len(u), path.Len()-1))
	}
	strike := pp.payoff.Strike()
	touched := func(x float64) bool {
		if pp.payoff.OptionType() == payoff.Call {
			return x >= strike
		}
		return x <= strike
	}

	if touched(path.Front()) {
		return pp.pay(path, 0, path.Front())
	}
	grid := path.Grid
	for i := 0; i < len(u); i++ {
		from, to := path.Values[i], path.Values[i+1]
		if touched(to) {
			return pp.pay(path, grid[i+1], strike)
		}
		sd := pp.process.StdDeviation(grid[i], from, grid.Dt(i))
		if sd == 0 {
			continue
		}
		p := math.Exp(-2 * math.Log(strike/from) * math.Log(strike/to) / (sd * sd))
		if u[i] < p {
			return pp.pay(path, grid[i+1], strike)
		}
	}
	return 0
}

// pay values a hit at time t where the asset was worth level.
func (pp *DigitalPathPricer) pay(path mc.Path, t, level float64) float64 {
	amount := pp.cash
	if pp.payoffAtExpiry {
		if pp.asset {
			amount = path.Back()
		}
		return amount * pp.process.RiskFree.Discount(path.Grid.Last())
	}
	if pp.asset {
		amount = level
	}
	return amount * pp.process.RiskFree.Discount(t)
}

// EuropeanPathPricer values a European payoff on the terminal point of a path.
type EuropeanPathPricer struct {
	payoff   payoff.Payoff
	discount float64
}

func NewEuropeanPathPricer(p payoff.Payoff, discount float64) *EuropeanPathPricer {
	return &EuropeanPathPricer{payoff: p, discount: discount}
}

func (pp *EuropeanPathPricer) Price(path mc.Path) float64 {
	return pp.payoff.Value(path.Back()) * pp.discount
}
