package engine

import (
	"fmt"

	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/mc"
	"github.com/banachtech/zebra-digital/payoff"
)

// Arguments are the contract terms and the market an engine prices against.
type Arguments struct {
	Payoff   payoff.Payoff
	Exercise payoff.Exercise
	Process  *market.BlackScholesProcess
}

func (a Arguments) validate() error {
	switch {
	case a.Payoff == nil:
		return fmt.Errorf("%w: no payoff", ErrInvalidArguments)
	case a.Exercise == nil:
		return fmt.Errorf("%w: no exercise", ErrInvalidArguments)
	case a.Process == nil:
		return fmt.Errorf("%w: no process", ErrInvalidArguments)
	}
	return nil
}

// Results of a pricing call. Optional quantities are nil when the engine does not produce them.
type Results struct {
	Value         *float64
	ErrorEstimate *float64
	Delta         *float64
	Gamma         *float64
	Rho           *float64
	Samples       int
	State         mc.State
}

func ptr(v float64) *float64 { return &v }

// americanDigital narrows the arguments to an American exercise and a digital payoff.
func americanDigital(a Arguments) (*payoff.AmericanExercise, payoff.StrikedTypePayoff, error) {
	if err := a.validate(); err != nil {
		return nil, nil, err
	}
	ex, ok := a.Exercise.(*payoff.AmericanExercise)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %v exercise given, american required", ErrInvalidExerciseStyle, a.Exercise.Type())
	}
	if ex.Earliest.After(a.Process.ReferenceDate()) {
		return nil, nil, fmt.Errorf("%w: first exercise date %s after reference date %s", ErrUnsupportedExerciseWindow,
			ex.Earliest.Format(market.Layout), a.Process.ReferenceDate().Format(market.Layout))
	}
	switch p := a.Payoff.(type) {
	case *payoff.CashOrNothing:
		return ex, p, nil
	case *payoff.AssetOrNothing:
		return ex, p, nil
	}
	return nil, nil, fmt.Errorf("%w: %s payoff, cash-or-nothing or asset-or-nothing required", ErrInvalidPayoffType, a.Payoff.Name())
}
