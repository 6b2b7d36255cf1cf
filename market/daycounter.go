package market

import "time"

// DayCounter converts a pair of dates into a year fraction.
type DayCounter interface {
	Name() string
	YearFraction(start, end time.Time) float64
}

func actualDays(start, end time.Time) float64 {
	return day(end).Sub(day(start)).Hours() / 24
}

type Actual365Fixed struct{}

func (Actual365Fixed) Name() string { return "Actual/365 (Fixed)" }

func (Actual365Fixed) YearFraction(start, end time.Time) float64 {
	return actualDays(start, end) / 365.0
}

type Actual360 struct{}

func (Actual360) Name() string { return "Actual/360" }

func (Actual360) YearFraction(start, end time.Time) float64 {
	return actualDays(start, end) / 360.0
}

// Business252 counts business days of a calendar over a 252 day year.
type Business252 struct {
	Calendar Calendar
}

func (b Business252) Name() string { return "Business/252(" + b.Calendar.Name + ")" }

func (b Business252) YearFraction(start, end time.Time) float64 {
	return float64(b.Calendar.BusinessDaysBetween(start, end)) / 252.0
}

// DayCounterByName maps config names to day counters.
func DayCounterByName(name string) (DayCounter, bool) {
	switch name {
	case "", "ACT/365F", "Actual/365 (Fixed)":
		return Actual365Fixed{}, true
	case "ACT/360", "Actual/360":
		return Actual360{}, true
	case "BUS/252", "Business/252":
		return Business252{Calendar: NYSE()}, true
	}
	return nil, false
}
