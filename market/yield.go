package market

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"
)

// ErrInvalidTermStructure is returned when curve inputs are inconsistent.
var ErrInvalidTermStructure = errors.New("invalid term structure")

// YieldTermStructure gives discount factors by year fraction from its reference date.
type YieldTermStructure interface {
	ReferenceDate() time.Time
	DayCounter() DayCounter
	Discount(t float64) float64
}

// DiscountAt returns the discount factor at date d.
func DiscountAt(ts YieldTermStructure, d time.Time) float64 {
	return ts.Discount(ts.DayCounter().YearFraction(ts.ReferenceDate(), d))
}

// FlatForward is a constant continuously compounded rate.
type FlatForward struct {
	referenceDate time.Time
	rate          float64
	dayCounter    DayCounter
}

func NewFlatForward(referenceDate time.Time, rate float64, dc DayCounter) *FlatForward {
	return &FlatForward{referenceDate: referenceDate, rate: rate, dayCounter: dc}
}

func (f *FlatForward) ReferenceDate() time.Time { return f.referenceDate }

func (f *FlatForward) DayCounter() DayCounter { return f.dayCounter }

func (f *FlatForward) Rate() float64 { return f.rate }

func (f *FlatForward) Discount(t float64) float64 { return math.Exp(-f.rate * t) }

// DiscountCurve interpolates log discount factors linearly between pillar dates and
// extrapolates with the last forward rate.
type DiscountCurve struct {
	referenceDate time.Time
	dayCounter    DayCounter
	times         []float64
	logDF         []float64
	pl            interp.PiecewiseLinear
}

func NewDiscountCurve(referenceDate time.Time, dates []time.Time, dfs []float64, dc DayCounter) (*DiscountCurve, error) {
	if len(dates) == 0 || len(dates) != len(dfs) {
		return nil, fmt.Errorf("%w: %d dates for %d discount factors", ErrInvalidTermStructure, len(dates), len(dfs))
	}
	times := make([]float64, len(dates)+1)
	logDF := make([]float64, len(dates)+1)
	for i, d := range dates {
		times[i+1] = dc.YearFraction(referenceDate, d)
		if times[i+1] <= times[i] {
			return nil, fmt.Errorf("%w: pillar dates must be increasing and after the reference date", ErrInvalidTermStructure)
		}
		if !(dfs[i] > 0) {
			return nil, fmt.Errorf("%w: non-positive discount factor %v", ErrInvalidTermStructure, dfs[i])
		}
		logDF[i+1] = math.Log(dfs[i])
	}
	c := &DiscountCurve{referenceDate: referenceDate, dayCounter: dc, times: times, logDF: logDF}
	if err := c.pl.Fit(times, logDF); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTermStructure, err)
	}
	return c, nil
}

func (c *DiscountCurve) ReferenceDate() time.Time { return c.referenceDate }

func (c *DiscountCurve) DayCounter() DayCounter { return c.dayCounter }

func (c *DiscountCurve) Discount(t float64) float64 {
	n := len(c.times) - 1
	if t <= c.times[n] {
		return math.Exp(c.pl.Predict(math.Max(t, 0)))
	}
	fwd := (c.logDF[n] - c.logDF[n-1]) / (c.times[n] - c.times[n-1])
	return math.Exp(c.logDF[n] + fwd*(t-c.times[n]))
}
