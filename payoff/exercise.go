package payoff

import (
	"fmt"
	"time"
)

type ExerciseType int

const (
	European ExerciseType = iota
	American
)

func (t ExerciseType) String() string {
	switch t {
	case European:
		return "european"
	case American:
		return "american"
	}
	return fmt.Sprintf("ExerciseType(%d)", int(t))
}

// Exercise describes when a contract can be exercised.
type Exercise interface {
	Type() ExerciseType
	Dates() []time.Time
	LastDate() time.Time
}

type EuropeanExercise struct {
	Date time.Time
}

func NewEuropeanExercise(date time.Time) *EuropeanExercise {
	return &EuropeanExercise{Date: date}
}

func (e *EuropeanExercise) Type() ExerciseType { return European }

func (e *EuropeanExercise) Dates() []time.Time { return []time.Time{e.Date} }

func (e *EuropeanExercise) LastDate() time.Time { return e.Date }

// AmericanExercise is continuous monitoring over [Earliest, Latest]. PayoffAtExpiry defers
// payment of a triggered contract to Latest instead of paying at the hit.
type AmericanExercise struct {
	Earliest       time.Time
	Latest         time.Time
	PayoffAtExpiry bool
}

func NewAmericanExercise(earliest, latest time.Time, payoffAtExpiry bool) (*AmericanExercise, error) {
	if latest.Before(earliest) {
		return nil, fmt.Errorf("latest exercise date %s before earliest %s", latest.Format("2006-01-02"), earliest.Format("2006-01-02"))
	}
	return &AmericanExercise{Earliest: earliest, Latest: latest, PayoffAtExpiry: payoffAtExpiry}, nil
}

func (e *AmericanExercise) Type() ExerciseType { return American }

func (e *AmericanExercise) Dates() []time.Time { return []time.Time{e.Earliest, e.Latest} }

func (e *AmericanExercise) LastDate() time.Time { return e.Latest }
