package engine

import (
	"fmt"
	"math"

	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/payoff"
	"gonum.org/v1/gonum/stat/distuv"
)

// AnalyticEuropeanEngine is Black-Scholes for vanilla and digital payoffs with European
// exercise.
type AnalyticEuropeanEngine struct{}

func NewAnalyticEuropeanEngine() *AnalyticEuropeanEngine {
	return &AnalyticEuropeanEngine{}
}

func (e *AnalyticEuropeanEngine) Calculate(args Arguments) (Results, error) {
	if err := args.validate(); err != nil {
		return Results{}, err
	}
	ex, ok := args.Exercise.(*payoff.EuropeanExercise)
	if !ok {
		return Results{}, fmt.Errorf("%w: %v exercise given, european required", ErrInvalidExerciseStyle, args.Exercise.Type())
	}
	p, ok := args.Payoff.(payoff.StrikedTypePayoff)
	if !ok {
		return Results{}, fmt.Errorf("%w: %s payoff has no strike", ErrInvalidPayoffType, args.Payoff.Name())
	}
	proc := args.Process
	v, err := blackScholes(
		proc.Spot,
		market.DiscountAt(proc.RiskFree, ex.Date),
		market.DiscountAt(proc.Dividend, ex.Date),
		market.BlackVarianceAt(proc.Vol, ex.Date, p.Strike()),
		proc.Time(ex.Date),
		p,
	)
	if err != nil {
		return Results{}, err
	}
	return Results{Value: ptr(v.value), Delta: ptr(v.delta), Gamma: ptr(v.gamma), Rho: ptr(v.rho)}, nil
}

// blackScholes values a European payoff paid at the date the discounts and variance refer to.
func blackScholes(spot, discount, dividendDiscount, variance, t float64, p payoff.StrikedTypePayoff) (hitValues, error) {
	strike := p.Strike()
	phi := float64(p.OptionType())
	forward := spot * dividendDiscount / discount

	if variance < epsilon {
		out := hitValues{value: discount * p.Value(forward)}
		if _, ok := p.(*payoff.PlainVanilla); ok && p.Value(forward) > 0 {
			out.delta = phi * dividendDiscount
		}
		return out, nil
	}

	sd := math.Sqrt(variance)
	d1 := (math.Log(forward/strike) + 0.5*variance) / sd
	d2 := d1 - sd
	n1, n2 := distuv.UnitNormal.Prob(d1), distuv.UnitNormal.Prob(d2)

	var out hitValues
	switch p := p.(type) {
	case *payoff.PlainVanilla:
		nd1, nd2 := distuv.UnitNormal.CDF(phi*d1), distuv.UnitNormal.CDF(phi*d2)
		out.value = phi * discount * (forward*nd1 - strike*nd2)
		out.delta = phi * dividendDiscount * nd1
		out.gamma = dividendDiscount * n1 / (spot * sd)
		out.rho = phi * t * discount * strike * nd2
	case *payoff.CashOrNothing:
		nd2 := distuv.UnitNormal.CDF(phi * d2)
		out.value = discount * p.Cash * nd2
		out.delta = phi * discount * p.Cash * n2 / (spot * sd)
		out.gamma = -phi * discount * p.Cash * n2 * d1 / (spot * spot * variance)
		out.rho = -t*out.value + phi*discount*p.Cash*n2*t/sd
	case *payoff.AssetOrNothing:
		nd1 := distuv.UnitNormal.CDF(phi * d1)
		out.value = spot * dividendDiscount * nd1
		out.delta = dividendDiscount * (nd1 + phi*n1/sd)
		out.gamma = -phi * dividendDiscount * n1 * d2 / (spot * variance)
		out.rho = phi * spot * dividendDiscount * n1 * t / sd
	default:
		return hitValues{}, fmt.Errorf("%w: unsupported %s payoff", ErrInvalidPayoffType, p.Name())
	}
	return out, nil
}
