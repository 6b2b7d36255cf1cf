package market

import (
	"errors"
	"sort"
	"time"
)

const Layout = "2006-01-02"

var nyseHolidays = []string{"2022-01-01", "2022-01-17", "2022-02-21", "2022-04-15", "2022-05-30", "2022-06-20", "2022-07-04", "2022-09-05", "2022-11-24", "2022-12-26", "2023-01-02", "2023-01-16", "2023-02-20", "2023-04-07", "2023-05-29", "2023-06-19", "2023-07-04", "2023-09-04", "2023-11-23", "2023-12-25", "2024-01-01", "2024-01-15", "2024-02-19", "2024-03-29", "2024-05-27", "2024-06-19", "2024-07-04", "2024-09-02", "2024-11-28", "2024-12-25", "2025-01-01", "2025-01-20", "2025-02-17", "2025-04-18", "2025-05-26", "2025-06-19", "2025-07-04", "2025-09-01", "2025-11-27", "2025-12-25", "2026-01-01", "2026-01-19", "2026-02-16", "2026-04-03", "2026-05-25", "2026-06-19", "2026-07-03", "2026-09-07", "2026-11-26", "2026-12-25"}

// Calendar is a weekend plus holiday-list business day calendar.
type Calendar struct {
	Name     string
	holidays map[time.Time]struct{}
}

// NYSE returns the New York Stock Exchange calendar.
func NYSE() Calendar {
	c, _ := NewCalendar("NYSE", nyseHolidays)
	return c
}

// NewCalendar parses holidays given in Layout format.
func NewCalendar(name string, holidays []string) (Calendar, error) {
	c := Calendar{Name: name, holidays: make(map[time.Time]struct{}, len(holidays))}
	for _, v := range holidays {
		d, err := time.Parse(Layout, v)
		if err != nil {
			return Calendar{}, err
		}
		c.holidays[d] = struct{}{}
	}
	return c, nil
}

func (c Calendar) IsHoliday(d time.Time) bool {
	_, ok := c.holidays[day(d)]
	return ok
}

func IsWeekday(d time.Time) bool {
	return d.Weekday() > 0 && d.Weekday() < 6
}

func (c Calendar) IsBusinessDay(d time.Time) bool {
	return IsWeekday(d) && !c.IsHoliday(d)
}

// AdjustFollowing rolls d forward to the first business day.
func (c Calendar) AdjustFollowing(d time.Time) time.Time {
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// ListBusinessDates returns business days from (and including) start to (and including) end.
func (c Calendar) ListBusinessDates(start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, errors.New("end date must be later than start date")
	}
	out := []time.Time{start}
	for {
		start = c.AdjustFollowing(start.AddDate(0, 0, 1))
		if start.After(end) {
			return out, nil
		}
		out = append(out, start)
	}
}

// BusinessDaysBetween counts business days in (start, end]. Negative when end is before start.
func (c Calendar) BusinessDaysBetween(start, end time.Time) int {
	start, end = day(start), day(end)
	sign := 1
	if end.Before(start) {
		start, end = end, start
		sign = -1
	}
	n := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			n++
		}
	}
	return sign * n
}

// Holidays returns the holiday list in date order.
func (c Calendar) Holidays() []time.Time {
	out := make([]time.Time, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func day(d time.Time) time.Time {
	y, m, dd := d.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
