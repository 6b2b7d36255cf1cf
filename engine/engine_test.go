package engine

import (
	"testing"
	"time"

	"github.com/banachtech/zebra-digital/market"
	"github.com/banachtech/zebra-digital/payoff"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// oneYear is a full year on Actual/365 Fixed from refDate.
var oneYear = refDate.AddDate(0, 0, 365)

func newProcess(t *testing.T, spot, r, q, vol float64) *market.BlackScholesProcess {
	t.Helper()
	dc := market.Actual365Fixed{}
	proc, err := market.NewBlackScholesProcess(spot,
		market.NewFlatForward(refDate, r, dc),
		market.NewFlatForward(refDate, q, dc),
		market.NewBlackConstantVol(refDate, vol, dc))
	require.NoError(t, err)
	return proc
}

func cashDigital(t *testing.T, typ payoff.OptionType, strike, cash float64) *payoff.CashOrNothing {
	t.Helper()
	p, err := payoff.NewCashOrNothing(typ, strike, cash)
	require.NoError(t, err)
	return p
}

func assetDigital(t *testing.T, typ payoff.OptionType, strike float64) *payoff.AssetOrNothing {
	t.Helper()
	p, err := payoff.NewAssetOrNothing(typ, strike)
	require.NoError(t, err)
	return p
}

func american(t *testing.T, latest time.Time, atExpiry bool) *payoff.AmericanExercise {
	t.Helper()
	ex, err := payoff.NewAmericanExercise(refDate, latest, atExpiry)
	require.NoError(t, err)
	return ex
}
