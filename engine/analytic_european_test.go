package engine

import (
	"math"
	"testing"

	"github.com/banachtech/zebra-digital/payoff"
	"github.com/stretchr/testify/require"
)

func TestAnalyticEuropean(t *testing.T) {
	twoYears := refDate.AddDate(0, 0, 730)
	proc := newProcess(t, 100, 0.04, 0.01, 0.25)

	vanilla := func(typ payoff.OptionType) payoff.Payoff {
		p, err := payoff.NewPlainVanilla(typ, 105)
		require.NoError(t, err)
		return p
	}

	type testCases struct {
		name   string
		payoff payoff.Payoff
		value  float64
	}

	for _, test := range []testCases{
		{name: "VANILLA_CALL", payoff: vanilla(payoff.Call), value: 14.230245657986076},
		{name: "VANILLA_PUT", payoff: vanilla(payoff.Put), value: 13.137594697907309},
		{name: "CASH_CALL", payoff: cashDigital(t, payoff.Call, 105, 10), value: 4.083198454532771},
		{name: "CASH_PUT", payoff: cashDigital(t, payoff.Put, 105, 10), value: 5.1479650093335865},
		{name: "ASSET_CALL", payoff: assetDigital(t, payoff.Call, 105), value: 57.10382943058018},
		{name: "ASSET_PUT", payoff: assetDigital(t, payoff.Put, 105), value: 40.91603790009535},
	} {
		t.Run(test.name, func(t *testing.T) {
			eng := NewAnalyticEuropeanEngine()
			ex := payoff.NewEuropeanExercise(twoYears)
			res, err := eng.Calculate(Arguments{Payoff: test.payoff, Exercise: ex, Process: proc})
			require.NoError(t, err)
			require.InDelta(t, test.value, *res.Value, 1e-8)

			price := func(spot, r float64) float64 {
				out, err := eng.Calculate(Arguments{Payoff: test.payoff, Exercise: ex, Process: newProcess(t, spot, r, 0.01, 0.25)})
				require.NoError(t, err)
				return *out.Value
			}
			h := 1e-3
			up, dn := price(100+h, 0.04), price(100-h, 0.04)
			require.InDelta(t, (up-dn)/(2*h), *res.Delta, 1e-6)
			require.InDelta(t, (up-2*test.value+dn)/(h*h), *res.Gamma, 1e-4)
			require.InDelta(t, (price(100, 0.04+1e-5)-price(100, 0.04-1e-5))/2e-5, *res.Rho, 1e-4)
		})
	}
}

func TestAnalyticEuropeanParity(t *testing.T) {
	twoYears := refDate.AddDate(0, 0, 730)
	proc := newProcess(t, 100, 0.04, 0.01, 0.25)
	ex := payoff.NewEuropeanExercise(twoYears)
	eng := NewAnalyticEuropeanEngine()

	value := func(p payoff.Payoff) float64 {
		res, err := eng.Calculate(Arguments{Payoff: p, Exercise: ex, Process: proc})
		require.NoError(t, err)
		return *res.Value
	}
	cashCall, cashPut := value(cashDigital(t, payoff.Call, 105, 1)), value(cashDigital(t, payoff.Put, 105, 1))
	require.InDelta(t, math.Exp(-0.08), cashCall+cashPut, 1e-12)

	assetCall, assetPut := value(assetDigital(t, payoff.Call, 105)), value(assetDigital(t, payoff.Put, 105))
	require.InDelta(t, 100*math.Exp(-0.02), assetCall+assetPut, 1e-10)
}

func TestAnalyticEuropeanRejectsAmerican(t *testing.T) {
	_, err := NewAnalyticEuropeanEngine().Calculate(Arguments{
		Payoff:   cashDigital(t, payoff.Call, 105, 1),
		Exercise: american(t, oneYear, false),
		Process:  newProcess(t, 100, 0.04, 0.01, 0.25),
	})
	require.ErrorIs(t, err, ErrInvalidExerciseStyle)
}
