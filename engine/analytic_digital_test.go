package engine

import (
	"math"
	"testing"
	"time"

	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/payoff"
	"github.com/stretchr/testify/require"
)

func TestAnalyticDigitalAmericanValues(t *testing.T) {
	type testCases struct {
		name     string
		proc     [4]float64 // spot, r, q, vol
		payoff   func(t *testing.T) payoff.Payoff
		atExpiry bool
		value    float64
	}

	for _, test := range []testCases{
		{
			name:     "CASH_CALL_AT_EXPIRY",
			proc:     [4]float64{100, 0.05, 0, 0.2},
			payoff:   func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Call, 110, 10) },
			atExpiry: true,
			value:    6.452014993908848,
		},
		{
			name:     "CASH_CALL_AT_EXPIRY_FAR",
			proc:     [4]float64{100, 0.05, 0, 0.2},
			payoff:   func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Call, 120, 10) },
			atExpiry: true,
			value:    3.925837437440993,
		},
		{
			name:   "CASH_CALL_AT_HIT",
			proc:   [4]float64{100, 0.05, 0, 0.2},
			payoff: func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Call, 110, 10) },
			value:  6.679707931559405,
		},
		{
			name:     "ALREADY_HIT_AT_EXPIRY",
			proc:     [4]float64{100, 0.05, 0, 0.2},
			payoff:   func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Call, 100, 10) },
			atExpiry: true,
			value:    10 * math.Exp(-0.05),
		},
		{
			name:   "ALREADY_HIT_AT_HIT",
			proc:   [4]float64{100, 0.05, 0, 0.2},
			payoff: func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Put, 100, 10) },
			value:  10,
		},
		{
			name:   "ALREADY_HIT_ASSET_AT_HIT",
			proc:   [4]float64{100, 0.05, 0.02, 0.2},
			payoff: func(t *testing.T) payoff.Payoff { return assetDigital(t, payoff.Put, 105) },
			value:  100,
		},
		{
			name:     "ALREADY_HIT_ASSET_AT_EXPIRY",
			proc:     [4]float64{100, 0.05, 0.02, 0.2},
			payoff:   func(t *testing.T) payoff.Payoff { return assetDigital(t, payoff.Call, 95) },
			atExpiry: true,
			value:    100 * math.Exp(-0.02),
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			proc := newProcess(t, test.proc[0], test.proc[1], test.proc[2], test.proc[3])
			res, err := NewAnalyticDigitalAmericanEngine().Calculate(Arguments{
				Payoff:   test.payoff(t),
				Exercise: american(t, oneYear, test.atExpiry),
				Process:  proc,
			})
			require.NoError(t, err)
			require.InDelta(t, test.value, *res.Value, 1e-8)
			if test.atExpiry {
				require.Nil(t, res.Delta)
				require.Nil(t, res.Gamma)
				require.Nil(t, res.Rho)
			} else {
				require.NotNil(t, res.Delta)
				require.NotNil(t, res.Gamma)
				require.NotNil(t, res.Rho)
			}
		})
	}
}

func TestAnalyticDigitalZeroRatesHitEqualsExpiry(t *testing.T) {
	proc := newProcess(t, 100, 0, 0, 0.3)
	eng := NewAnalyticDigitalAmericanEngine()
	for _, typ := range []payoff.OptionType{payoff.Call, payoff.Put} {
		strike := 115.0
		if typ == payoff.Put {
			strike = 85
		}
		p := cashDigital(t, typ, strike, 1)
		hit, err := eng.Calculate(Arguments{Payoff: p, Exercise: american(t, oneYear, false), Process: proc})
		require.NoError(t, err)
		expiry, err := eng.Calculate(Arguments{Payoff: p, Exercise: american(t, oneYear, true), Process: proc})
		require.NoError(t, err)
		require.InDelta(t, *hit.Value, *expiry.Value, 1e-12)
		require.Greater(t, *hit.Value, 0.0)
		require.Less(t, *hit.Value, 1.0)
	}
}

func TestAnalyticDigitalGreeksMatchFiniteDifferences(t *testing.T) {
	type testCases struct {
		name              string
		spot, r, q, vol   float64
		payoff            func(t *testing.T) payoff.Payoff
		delta, gamma, rho float64
	}

	for _, test := range []testCases{
		{
			name: "CASH_CALL", spot: 100, r: 0.05, q: 0, vol: 0.2,
			payoff: func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Call, 110, 10) },
			delta:  0.33585935272120104, gamma: 0.001846171016051795, rho: 12.352196782741544,
		},
		{
			name: "ASSET_CALL", spot: 100, r: 0.05, q: 0.02, vol: 0.3,
			payoff: func(t *testing.T) payoff.Payoff { return assetDigital(t, payoff.Call, 120) },
		},
		{
			name: "CASH_PUT", spot: 100, r: 0.03, q: 0.01, vol: 0.25,
			payoff: func(t *testing.T) payoff.Payoff { return cashDigital(t, payoff.Put, 90, 10) },
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			eng := NewAnalyticDigitalAmericanEngine()
			ex := american(t, oneYear, false)
			price := func(spot, r float64) float64 {
				res, err := eng.Calculate(Arguments{Payoff: test.payoff(t), Exercise: ex, Process: newProcess(t, spot, r, test.q, test.vol)})
				require.NoError(t, err)
				return *res.Value
			}
			res, err := eng.Calculate(Arguments{Payoff: test.payoff(t), Exercise: ex, Process: newProcess(t, test.spot, test.r, test.q, test.vol)})
			require.NoError(t, err)

			h := 1e-3
			up, mid, dn := price(test.spot+h, test.r), *res.Value, price(test.spot-h, test.r)
			require.InDelta(t, (up-dn)/(2*h), *res.Delta, 1e-6)
			require.InDelta(t, (up-2*mid+dn)/(h*h), *res.Gamma, 1e-4)
			dr := 1e-5
			require.InDelta(t, (price(test.spot, test.r+dr)-price(test.spot, test.r-dr))/(2*dr), *res.Rho, 1e-4)

			if test.delta != 0 {
				require.InDelta(t, test.delta, *res.Delta, 1e-8)
				require.InDelta(t, test.gamma, *res.Gamma, 1e-8)
				require.InDelta(t, test.rho, *res.Rho, 1e-6)
			}
		})
	}
}

func TestAnalyticDigitalPreconditions(t *testing.T) {
	proc := newProcess(t, 100, 0.05, 0, 0.2)
	vanilla, err := payoff.NewPlainVanilla(payoff.Call, 100)
	require.NoError(t, err)
	late, err := payoff.NewAmericanExercise(refDate.AddDate(0, 0, 1), oneYear, false)
	require.NoError(t, err)

	type testCases struct {
		name string
		args Arguments
		err  error
	}

	for _, test := range []testCases{
		{
			name: "EUROPEAN_EXERCISE",
			args: Arguments{Payoff: cashDigital(t, payoff.Call, 110, 1), Exercise: payoff.NewEuropeanExercise(oneYear), Process: proc},
			err:  ErrInvalidExerciseStyle,
		},
		{
			name: "WINDOW_AFTER_REFERENCE",
			args: Arguments{Payoff: cashDigital(t, payoff.Call, 110, 1), Exercise: late, Process: proc},
			err:  ErrUnsupportedExerciseWindow,
		},
		{
			name: "VANILLA_PAYOFF",
			args: Arguments{Payoff: vanilla, Exercise: american(t, oneYear, false), Process: proc},
			err:  ErrInvalidPayoffType,
		},
		{
			name: "NO_PROCESS",
			args: Arguments{Payoff: cashDigital(t, payoff.Call, 110, 1), Exercise: american(t, oneYear, false)},
			err:  ErrInvalidArguments,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			res, err := NewAnalyticDigitalAmericanEngine().Calculate(test.args)
			require.ErrorIs(t, err, test.err)
			require.Nil(t, res.Value)
		})
	}
}

func TestAnalyticDigitalVolCurve(t *testing.T) {
	dc := market.Actual365Fixed{}
	vol, err := market.NewBlackVarianceCurve(refDate, []time.Time{refDate.AddDate(0, 0, 182), oneYear}, []float64{0.2, 0.2}, dc)
	require.NoError(t, err)
	flat := newProcess(t, 100, 0.05, 0, 0.2)
	curve, err := market.NewBlackScholesProcess(100, flat.RiskFree, flat.Dividend, vol)
	require.NoError(t, err)

	p := cashDigital(t, payoff.Call, 110, 10)
	ex := american(t, oneYear, true)
	a, err := NewAnalyticDigitalAmericanEngine().Calculate(Arguments{Payoff: p, Exercise: ex, Process: flat})
	require.NoError(t, err)
	b, err := NewAnalyticDigitalAmericanEngine().Calculate(Arguments{Payoff: p, Exercise: ex, Process: curve})
	require.NoError(t, err)
	require.InDelta(t, *a.Value, *b.Value, 1e-12)
}
