package engine

import (
	"github.com/banachtech/zebra-digital/logs"
	"github.com/banachtech/zebra-digital/market"
	"github.com/sirupsen/logrus"
)

// AnalyticDigitalAmericanEngine prices American cash-or-nothing and asset-or-nothing digitals
// in closed form. Payoff at hit also yields delta, gamma and rho.
type AnalyticDigitalAmericanEngine struct{}

func NewAnalyticDigitalAmericanEngine() *AnalyticDigitalAmericanEngine {
	return &AnalyticDigitalAmericanEngine{}
}

func (e *AnalyticDigitalAmericanEngine) Calculate(args Arguments) (Results, error) {
	ex, p, err := americanDigital(args)
	if err != nil {
		return Results{}, err
	}
	proc := args.Process
	variance := market.BlackVarianceAt(proc.Vol, ex.Latest, p.Strike())
	dividendDiscount := market.DiscountAt(proc.Dividend, ex.Latest)
	riskFreeDiscount := market.DiscountAt(proc.RiskFree, ex.Latest)

	var res Results
	if ex.PayoffAtExpiry {
		res.Value = ptr(atExpiry(proc.Spot, riskFreeDiscount, dividendDiscount, variance, p))
	} else {
		v := atHit(proc.Spot, riskFreeDiscount, dividendDiscount, variance, proc.Time(ex.Latest), p)
		res.Value, res.Delta, res.Gamma, res.Rho = ptr(v.value), ptr(v.delta), ptr(v.gamma), ptr(v.rho)
	}

	logs.WithFields(logrus.Fields{
		"engine":           "analytic_american",
		"payoff":           p.Name(),
		"type":             p.OptionType().String(),
		"payoff_at_expiry": ex.PayoffAtExpiry,
		"value":            *res.Value,
	}).Debug("priced digital")
	return res, nil
}
