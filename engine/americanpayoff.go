package engine

import (
	"math"

	"github.com/banachtech/zebra-digital/payoff"
	"gonum.org/v1/gonum/stat/distuv"
)

const epsilon = 2.220446049250313e-16

// atExpiry values a knock-in digital paid at expiry: an up-and-in for calls and a
// down-and-in for puts, with the barrier at the strike.
func atExpiry(spot, discount, dividendDiscount, variance float64, p payoff.StrikedTypePayoff) float64 {
	strike := p.Strike()
	forward := spot * dividendDiscount / discount
	mu := math.Log(dividendDiscount/discount)/variance - 0.5

	var k float64
	switch p := p.(type) {
	case *payoff.CashOrNothing:
		k = p.Cash
	case *payoff.AssetOrNothing:
		k = forward
		mu += 1
	}

	eta, phi := -1.0, 1.0
	hit := strike <= spot
	if p.OptionType() == payoff.Put {
		eta, phi = 1.0, -1.0
		hit = strike >= spot
	}
	if hit {
		return discount * k
	}

	logHS := math.Log(strike / spot)
	var cumD1, cumD2 float64
	if variance >= epsilon {
		sd := math.Sqrt(variance)
		cumD1 = distuv.UnitNormal.CDF(phi * (-logHS/sd + mu*sd))
		cumD2 = distuv.UnitNormal.CDF(eta * (logHS/sd + mu*sd))
	} else {
		if -logHS*phi > 0 {
			cumD1 = 1
		}
		if logHS*eta > 0 {
			cumD2 = 1
		}
	}
	var y float64
	if cumD2 != 0 {
		y = math.Pow(strike/spot, 2*mu)
	}
	return discount * k * (cumD1 + y*cumD2)
}

// hitValues are the value and sensitivities of a digital paid at the first touch.
type hitValues struct {
	value, delta, gamma, rho float64
}

// atHit values a digital paid at the first time the spot touches the strike. t is the
// time to the last exercise date used to scale rho.
func atHit(spot, discount, dividendDiscount, variance, t float64, p payoff.StrikedTypePayoff) hitValues {
	strike := p.Strike()
	call := p.OptionType() == payoff.Call
	inTheMoney := (call && strike <= spot) || (!call && strike >= spot)

	var k float64
	switch p := p.(type) {
	case *payoff.CashOrNothing:
		k = p.Cash
	case *payoff.AssetOrNothing:
		k = strike
		if inTheMoney {
			k = spot
		}
	}
	if inTheMoney {
		out := hitValues{value: k}
		if _, ok := p.(*payoff.AssetOrNothing); ok {
			out.delta = 1
		}
		return out
	}
	if variance < epsilon {
		// the path never reaches the strike
		return hitValues{}
	}

	sd := math.Sqrt(variance)
	logHS := math.Log(strike / spot)
	mu := math.Log(dividendDiscount/discount)/variance - 0.5
	lambda := math.Sqrt(mu*mu - 2*math.Log(discount)/variance)
	d1 := logHS/sd + lambda*sd
	d2 := d1 - 2*lambda*sd

	var alpha, beta, dAlpha, dBeta float64
	if call {
		alpha = 1 - distuv.UnitNormal.CDF(d1)
		dAlpha = -distuv.UnitNormal.Prob(d1)
		beta = 1 - distuv.UnitNormal.CDF(d2)
		dBeta = -distuv.UnitNormal.Prob(d2)
	} else {
		alpha = distuv.UnitNormal.CDF(d1)
		dAlpha = distuv.UnitNormal.Prob(d1)
		beta = distuv.UnitNormal.CDF(d2)
		dBeta = distuv.UnitNormal.Prob(d2)
	}
	forward := math.Pow(strike/spot, mu+lambda)
	x := math.Pow(strike/spot, mu-lambda)

	out := hitValues{value: k * (forward*alpha + x*beta)}

	dAlphaDs := dAlpha / (-spot * sd)
	dBetaDs := dBeta / (-spot * sd)
	dForwardDs := -(mu + lambda) * forward / spot
	dXDs := -(mu - lambda) * x / spot
	out.delta = k * (dAlphaDs*forward + alpha*dForwardDs + dBetaDs*x + beta*dXDs)

	d2AlphaDs2 := -dAlphaDs / spot * (1 - d1/sd)
	d2BetaDs2 := -dBetaDs / spot * (1 - d2/sd)
	d2ForwardDs2 := (mu + lambda) * forward / (spot * spot) * (1 + mu + lambda)
	d2XDs2 := (mu - lambda) * x / (spot * spot) * (1 + mu - lambda)
	out.gamma = k * (d2AlphaDs2*forward + 2*dAlphaDs*dForwardDs + alpha*d2ForwardDs2 +
		d2BetaDs2*x + 2*dBetaDs*dXDs + beta*d2XDs2)

	if lambda > 0 {
		dAlphaDr := -dAlpha / (lambda * sd) * (1 + mu)
		dBetaDr := dBeta / (lambda * sd) * (1 + mu)
		dForwardDr := forward * (1 + (1+mu)/lambda) * logHS / variance
		dXDr := x * (1 - (1+mu)/lambda) * logHS / variance
		out.rho = t * k * (dAlphaDr*forward + alpha*dForwardDr + dBetaDr*x + beta*dXDr)
	}
	return out
}
