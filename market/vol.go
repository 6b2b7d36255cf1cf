package market

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"
)

// BlackVolTermStructure gives Black variances by year fraction and strike.
type BlackVolTermStructure interface {
	ReferenceDate() time.Time
	DayCounter() DayCounter
	BlackVariance(t, strike float64) float64
}

// BlackVarianceAt returns the Black variance to date d.
func BlackVarianceAt(ts BlackVolTermStructure, d time.Time, strike float64) float64 {
	return ts.BlackVariance(ts.DayCounter().YearFraction(ts.ReferenceDate(), d), strike)
}

// BlackVol returns the Black volatility to time t.
func BlackVol(ts BlackVolTermStructure, t, strike float64) float64 {
	if t <= 0 {
		t = 1e-5
	}
	return math.Sqrt(ts.BlackVariance(t, strike) / t)
}

// BlackConstantVol is a flat volatility.
type BlackConstantVol struct {
	referenceDate time.Time
	vol           float64
	dayCounter    DayCounter
}

func NewBlackConstantVol(referenceDate time.Time, vol float64, dc DayCounter) *BlackConstantVol {
	return &BlackConstantVol{referenceDate: referenceDate, vol: vol, dayCounter: dc}
}

func (v *BlackConstantVol) ReferenceDate() time.Time { return v.referenceDate }

func (v *BlackConstantVol) DayCounter() DayCounter { return v.dayCounter }

func (v *BlackConstantVol) Vol() float64 { return v.vol }

func (v *BlackConstantVol) BlackVariance(t, _ float64) float64 {
	return v.vol * v.vol * math.Max(t, 0)
}

// BlackVarianceCurve interpolates variance linearly in time from a strike-independent vol
// curve. Beyond the last date the last vol is held flat.
type BlackVarianceCurve struct {
	referenceDate time.Time
	dayCounter    DayCounter
	maxDate       time.Time
	times         []float64
	variances     []float64
	pl            interp.PiecewiseLinear
}

// NewBlackVarianceCurve requires dates strictly after the reference date, sorted and unique,
// and vols giving non-decreasing variance. The variance at the reference date is zero.
func NewBlackVarianceCurve(referenceDate time.Time, dates []time.Time, vols []float64, dc DayCounter) (*BlackVarianceCurve, error) {
	if len(dates) == 0 || len(dates) != len(vols) {
		return nil, fmt.Errorf("%w: mismatch between %d dates and %d vols", ErrInvalidTermStructure, len(dates), len(vols))
	}
	if !dates[0].After(referenceDate) {
		return nil, fmt.Errorf("%w: first date must be after the reference date", ErrInvalidTermStructure)
	}
	c := &BlackVarianceCurve{
		referenceDate: referenceDate,
		dayCounter:    dc,
		maxDate:       dates[len(dates)-1],
		times:         make([]float64, len(dates)+1),
		variances:     make([]float64, len(dates)+1),
	}
	for j := 1; j <= len(vols); j++ {
		c.times[j] = dc.YearFraction(referenceDate, dates[j-1])
		if c.times[j] <= c.times[j-1] {
			return nil, fmt.Errorf("%w: dates must be sorted unique", ErrInvalidTermStructure)
		}
		c.variances[j] = c.times[j] * vols[j-1] * vols[j-1]
		if c.variances[j] < c.variances[j-1] {
			return nil, fmt.Errorf("%w: variance must be non-decreasing", ErrInvalidTermStructure)
		}
	}
	if err := c.pl.Fit(c.times, c.variances); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTermStructure, err)
	}
	return c, nil
}

func (c *BlackVarianceCurve) ReferenceDate() time.Time { return c.referenceDate }

func (c *BlackVarianceCurve) DayCounter() DayCounter { return c.dayCounter }

func (c *BlackVarianceCurve) MaxDate() time.Time { return c.maxDate }

func (c *BlackVarianceCurve) BlackVariance(t, _ float64) float64 {
	if t <= 0 {
		return 0
	}
	last := len(c.times) - 1
	if t <= c.times[last] {
		return c.pl.Predict(t)
	}
	return c.variances[last] * t / c.times[last]
}
