package engine

import (
	"fmt"
	"math"

	"github.com/banachtech/zebra-digital/market"
	"gonum.org/v1/gonum/optimize"
)

// ImpliedVolatility returns the flat volatility at which the analytic American digital engine
// reproduces target. The search runs on log volatility from guess.
func ImpliedVolatility(target float64, args Arguments, guess float64) (float64, error) {
	if err := args.validate(); err != nil {
		return math.NaN(), err
	}
	if !(guess > 0) {
		guess = 0.5
	}
	eng := NewAnalyticDigitalAmericanEngine()
	proc := *args.Process
	price := func(sigma float64) (float64, error) {
		proc.Vol = market.NewBlackConstantVol(args.Process.Vol.ReferenceDate(), sigma, args.Process.Vol.DayCounter())
		res, err := eng.Calculate(Arguments{Payoff: args.Payoff, Exercise: args.Exercise, Process: &proc})
		if err != nil {
			return math.NaN(), err
		}
		return *res.Value, nil
	}
	if _, err := price(guess); err != nil {
		return math.NaN(), err
	}

	problem := optimize.Problem{
		Func: func(par []float64) float64 {
			v, err := price(math.Exp(par[0]))
			if err != nil || math.IsNaN(v) {
				return math.Inf(1)
			}
			return math.Pow(target-v, 2)
		},
	}
	res, err := optimize.Minimize(problem, []float64{math.Log(guess)}, nil, &optimize.NelderMead{})
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	sigma := math.Exp(res.X[0])
	if v, _ := price(sigma); math.IsNaN(v) || math.Abs(v-target) > 1e-4*math.Max(1, math.Abs(target)) {
		return math.NaN(), fmt.Errorf("%w: closest price %v for target %v", ErrNoConvergence, v, target)
	}
	return sigma, nil
}
