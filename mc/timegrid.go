package mc

import (
	"fmt"
	"math"
)

// TimeGrid holds the simulation times, starting at zero.
type TimeGrid []float64

// NewTimeGrid returns steps equal intervals on [0, end].
func NewTimeGrid(end float64, steps int) (TimeGrid, error) {
	if !(end > 0) {
		return nil, fmt.Errorf("time grid end must be positive, got %v", end)
	}
	if steps < 1 {
		return nil, fmt.Errorf("time grid needs at least one step, got %d", steps)
	}
	g := make(TimeGrid, steps+1)
	dt := end / float64(steps)
	for i := 1; i < steps; i++ {
		g[i] = dt * float64(i)
	}
	g[steps] = end
	return g, nil
}

// StepsFor returns max(int(end*stepsPerYear), 1).
func StepsFor(end float64, stepsPerYear int) int {
	return int(math.Max(math.Floor(end*float64(stepsPerYear)), 1))
}

func (g TimeGrid) Steps() int { return len(g) - 1 }

func (g TimeGrid) Dt(i int) float64 { return g[i+1] - g[i] }

func (g TimeGrid) Last() float64 { return g[len(g)-1] }
